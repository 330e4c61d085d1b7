package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), &out, args)
	return out.String(), err
}

func TestRun_Help(t *testing.T) {
	out, err := runCLI(t, "help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(out, "simulate <pipeline>") {
		t.Errorf("usage missing commands:\n%s", out)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "explode")
	if err == nil || !strings.Contains(err.Error(), `unknown command "explode"`) {
		t.Errorf("expected unknown command error, got %v", err)
	}
}

func TestSimulate_Take(t *testing.T) {
	out, err := runCLI(t, "simulate", "take", "--config", "config.yml")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	want := strings.Join([]string{
		"Subscribing...", "---",
		"Source: A: 0", "Subscription: A: 0", "---",
		"Source: A: 1", "Subscription: A: 1", "---",
		"Source: A: 2", "Subscription: A: 2", "---",
		"###", "Subscription completed",
	}, "\n")
	if !strings.HasPrefix(out, want+"\n") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "[take] completed after 4s, 3 values") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestSimulate_StopAt(t *testing.T) {
	out, err := runCLI(t, "simulate", "sourceA", "--config", "config.yml", "--for", "10s", "--stop-at", "2500ms")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if strings.Contains(out, "A: 2") {
		t.Errorf("run kept logging after stop:\n%s", out)
	}
	if !strings.Contains(out, "cancelled after 10s, 2 values") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestSimulate_Errors(t *testing.T) {
	if _, err := runCLI(t, "simulate", "--config", "config.yml"); err == nil {
		t.Error("expected error without a pipeline name")
	}
	_, err := runCLI(t, "simulate", "nope", "--config", "config.yml")
	if err == nil || !strings.Contains(err.Error(), "UNKNOWN_PIPELINE") {
		t.Errorf("expected unknown pipeline, got %v", err)
	}
}

func writeFastConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := "sandbox:\n  sources:\n" +
		"    - tag: A\n      interval: 20ms\n" +
		"    - tag: B\n      interval: 1h\n" +
		"    - tag: C\n      interval: 1h\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWatch_Take(t *testing.T) {
	out, err := runCLI(t, "watch", "take", "--config", writeFastConfig(t), "--for", "5s")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	want := strings.Join([]string{
		"Subscribing...", "---",
		"Source: A: 0", "Subscription: A: 0", "---",
		"Source: A: 1", "Subscription: A: 1", "---",
		"Source: A: 2", "Subscription: A: 2", "---",
		"###", "Subscription completed",
	}, "\n")
	if !strings.HasPrefix(out, want+"\n") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "[take] completed, 3 values") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestWatch_StopsAfterLimit(t *testing.T) {
	start := time.Now()
	out, err := runCLI(t, "watch", "sourceB", "--config", writeFastConfig(t), "--for", "100ms")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("watch ran for %s", time.Since(start))
	}
	if !strings.Contains(out, "[sourceB] running, 0 values") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestWatch_Errors(t *testing.T) {
	if _, err := runCLI(t, "watch"); err == nil {
		t.Error("expected error without a pipeline name")
	}
	_, err := runCLI(t, "watch", "zip", "--config", writeFastConfig(t))
	if err == nil || !strings.Contains(err.Error(), "UNKNOWN_PIPELINE") {
		t.Errorf("expected unknown pipeline error, got %v", err)
	}
}

func TestList(t *testing.T) {
	out, err := runCLI(t, "list", "--config", "config.yml")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"SOURCES", "sourceA", "PIPELINES", "switchMap", "withLatestFrom"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "SOURCES") > strings.Index(out, "PIPELINES") {
		t.Error("sources should be listed first")
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "dev") {
		t.Errorf("version = %q", out)
	}
}

func TestFlagHelpIsNotAnError(t *testing.T) {
	out, err := runCLI(t, "list", "--help")
	if err != nil {
		t.Fatalf("--help: %v", err)
	}
	if !strings.Contains(out, "--config") {
		t.Errorf("flag usage missing:\n%s", out)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := "name: lab\nserver:\n  port: 9090\nsandbox:\n  timing:\n    take_count: 5\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RXLAB_SERVER_MODE", "debug")

	cfg, err := (&configFlags{configFile: path}).load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "lab" || cfg.Server.Port != 9090 || cfg.Server.Mode != "debug" {
		t.Errorf("unexpected config %+v", cfg.Server)
	}
	if cfg.Sandbox.Timing.TakeCount != 5 {
		t.Errorf("take_count = %d", cfg.Sandbox.Timing.TakeCount)
	}
	if cfg.Sandbox.Timing.FirstSequence != 3 || cfg.Sandbox.Timing.InnerInterval != time.Second {
		t.Errorf("unset timing should keep defaults: %+v", cfg.Sandbox.Timing)
	}
	if len(cfg.Sandbox.Sources) != 3 {
		t.Errorf("sources = %d", len(cfg.Sandbox.Sources))
	}
	if cfg.Tracing.ServiceName != "lab" || cfg.Metrics.Interval != 15*time.Second {
		t.Errorf("telemetry defaults not applied: %+v %+v", cfg.Tracing, cfg.Metrics)
	}
}

func TestAppConfig_Validate(t *testing.T) {
	cfg := newAppConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	cfg.Server.Port = -1
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "config.server") {
		t.Errorf("expected server error, got %v", err)
	}

	cfg = newAppConfig()
	cfg.ApplyDefaults()
	cfg.Tracing.SampleRate = 2
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "config.tracing") {
		t.Errorf("expected tracing error, got %v", err)
	}
}
