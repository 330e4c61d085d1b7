// Command rxlab serves the reactive stream sandbox over HTTP and runs
// pipelines from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const usage = `Usage: rxlab <command> [flags]

Commands:
  serve                 run the HTTP service (default)
  simulate <pipeline>   run a pipeline on a virtual clock and print its log
  watch <pipeline>      run a pipeline in real time and print lines as they arrive
  list                  print the pipeline catalog
  version               print build information

Run "rxlab <command> --help" for command flags.
`

type command func(ctx context.Context, stdout io.Writer, args []string) error

var commands = map[string]command{
	"serve":    runServe,
	"simulate": runSimulate,
	"watch":    runWatch,
	"list":     runList,
	"version":  runVersion,
}

func main() {
	if err := run(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "rxlab:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer, args []string) error {
	name := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		name, args = args[0], args[1:]
	}
	if name == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q\n\n%s", name, usage)
	}
	if err := cmd(ctx, stdout, args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return nil
}

// configFlags are shared by every command that reads configuration.
type configFlags struct {
	configFile string
	envFile    string
}

func newFlagSet(name string, stdout io.Writer) (*pflag.FlagSet, *configFlags) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stdout)
	cf := &configFlags{}
	fs.StringVarP(&cf.configFile, "config", "c", "", "path to config.yml")
	fs.StringVar(&cf.envFile, "env-file", "", "path to a .env file")
	return fs, cf
}

// load reads, defaults and validates the configuration.
func (cf *configFlags) load() (*AppConfig, error) {
	cfg, err := loadConfig(cf.configFile, cf.envFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
