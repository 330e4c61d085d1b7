package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/kbukum/rxlab/bootstrap"
	"github.com/kbukum/rxlab/catalog"
	"github.com/kbukum/rxlab/logger"
	"github.com/kbukum/rxlab/logsink"
	"github.com/kbukum/rxlab/sandbox"
	"github.com/kbukum/rxlab/version"
)

func runSimulate(_ context.Context, stdout io.Writer, args []string) error {
	fs, cf := newFlagSet("simulate", stdout)
	var opts sandbox.SimulateOptions
	fs.DurationVar(&opts.For, "for", sandbox.DefaultSimulationDuration, "virtual time to advance")
	fs.DurationVar(&opts.StopAt, "stop-at", 0, "cancel the run at this virtual time")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("simulate: expected one pipeline name, got %d", fs.NArg())
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	logger.SetGlobalLogger(logger.NewNop())

	snap, err := sandbox.Simulate(cfg.Sandbox, fs.Arg(0), opts)
	if err != nil {
		return err
	}
	for _, line := range snap.Lines {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintf(stdout, "\n[%s] %s after %s, %d values\n", snap.Pipeline, snap.State, opts.For, snap.Values)
	if snap.Error != "" {
		fmt.Fprintf(stdout, "error: %s\n", snap.Error)
	}
	return nil
}

const watchPollInterval = 100 * time.Millisecond

// runWatch runs a pipeline in real time and prints each log line as it is
// appended. It returns when the run ends, --for elapses or a shutdown
// signal arrives.
func runWatch(ctx context.Context, stdout io.Writer, args []string) error {
	fs, cf := newFlagSet("watch", stdout)
	limit := fs.Duration("for", 10*time.Second, "stop watching after this long")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("watch: expected one pipeline name, got %d", fs.NArg())
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}

	logger.SetGlobalLogger(logger.NewNop())
	app, err := bootstrap.NewApp(cfg, bootstrap.WithLogger(logger.NewNop()))
	if err != nil {
		return err
	}
	sb := sandbox.New(cfg.Sandbox)
	if err := app.RegisterComponent(sandbox.NewComponent(sb)); err != nil {
		return err
	}

	name := fs.Arg(0)
	return app.RunTask(ctx, func(ctx context.Context) error {
		unsubscribe := sb.Subscribe(func(ev logsink.Event) {
			if ev.Type == logsink.EventAppend {
				fmt.Fprintln(stdout, ev.Line)
			}
		})
		if _, err := sb.Run(ctx, name); err != nil {
			unsubscribe()
			return err
		}

		deadline := time.NewTimer(*limit)
		defer deadline.Stop()
		poll := time.NewTicker(watchPollInterval)
		defer poll.Stop()
	wait:
		for {
			select {
			case <-ctx.Done():
				break wait
			case <-deadline.C:
				break wait
			case <-poll.C:
				snap, err := sb.Snapshot(ctx)
				if err != nil {
					unsubscribe()
					return err
				}
				if snap.State.Terminal() {
					break wait
				}
			}
		}

		unsubscribe()
		// The snapshot runs on the loop, after any listener call in flight.
		snap, err := sb.Snapshot(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\n[%s] %s, %d values\n", snap.Pipeline, snap.State, snap.Values)
		if snap.Error != "" {
			fmt.Fprintf(stdout, "error: %s\n", snap.Error)
		}
		return nil
	})
}

func runList(_ context.Context, stdout io.Writer, args []string) error {
	fs, cf := newFlagSet("list", stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	logger.SetGlobalLogger(logger.NewNop())

	cat := sandbox.New(cfg.Sandbox).Catalog()
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, group := range []struct {
		title string
		defs  []catalog.Definition
	}{
		{"SOURCES", cat.Sources()},
		{"PIPELINES", cat.Pipelines()},
	} {
		fmt.Fprintln(tw, group.title)
		for _, d := range group.defs {
			fmt.Fprintf(tw, "  %s\t%s\n", d.Name, d.Description)
		}
	}
	return tw.Flush()
}

func runVersion(_ context.Context, stdout io.Writer, args []string) error {
	fs, _ := newFlagSet("version", stdout)
	short := fs.Bool("short", false, "print the version only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	info := version.Get()
	if *short {
		fmt.Fprintln(stdout, info.Short())
		return nil
	}
	fmt.Fprintln(stdout, info.String())
	return nil
}

