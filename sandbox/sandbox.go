package sandbox

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kbukum/rxlab/catalog"
	"github.com/kbukum/rxlab/emitter"
	"github.com/kbukum/rxlab/errors"
	"github.com/kbukum/rxlab/logger"
	"github.com/kbukum/rxlab/logsink"
	"github.com/kbukum/rxlab/runner"
	"github.com/kbukum/rxlab/scheduler"
)

// Sandbox owns one scheduler loop and everything that runs on it.
type Sandbox struct {
	loop    *scheduler.Loop
	sink    *logsink.Sink
	sources *emitter.Registry
	catalog *catalog.Catalog
	runner  *runner.Runner
	log     *logger.Logger
}

// New assembles a sandbox. The loop does not run until Start (or the
// component) is called.
func New(cfg Config, opts ...runner.Option) *Sandbox {
	loop := scheduler.NewLoop(scheduler.WithQueueSize(cfg.QueueSize))
	sink := logsink.New()
	sources := emitter.NewRegistry(loop, sink, cfg.Sources...)
	cat := catalog.Default(sources, cfg.Timing)
	r := runner.New(cfg.Runner, cat, sources, sink, opts...)

	s := &Sandbox{
		loop:    loop,
		sink:    sink,
		sources: sources,
		catalog: cat,
		runner:  r,
		log:     logger.WithComponent("sandbox"),
	}
	// Panic handlers run on the loop, so the runner can be touched directly.
	loop.SetPanicHandler(func(p any) {
		r.Fail(fmt.Errorf("panic: %v", p))
	})
	return s
}

// Catalog returns the read-only pipeline catalog.
func (s *Sandbox) Catalog() *catalog.Catalog { return s.catalog }

// Lines returns a copy of the current log.
func (s *Sandbox) Lines() []string { return s.sink.Lines() }

// Subscribe registers l for log changes. l runs on the loop goroutine and
// must not block.
func (s *Sandbox) Subscribe(l logsink.Listener) (unsubscribe func()) {
	return s.sink.Subscribe(l)
}

// Run starts the named pipeline and returns the resulting snapshot.
func (s *Sandbox) Run(ctx context.Context, name string) (runner.Snapshot, error) {
	var (
		snap   runner.Snapshot
		runErr error
	)
	if err := s.do(ctx, func() {
		runErr = s.runner.Run(name)
		snap = s.runner.Snapshot()
	}); err != nil {
		return runner.Snapshot{}, err
	}
	if runErr != nil {
		return snap, runErr
	}
	s.log.WithContext(logger.ContextWithRunID(ctx, snap.RunID)).Debug("Run requested", logger.Fields("pipeline", name))
	return snap, nil
}

// Cancel cancels the active run and reports whether one was running.
func (s *Sandbox) Cancel(ctx context.Context) (bool, error) {
	var cancelled bool
	err := s.do(ctx, func() { cancelled = s.runner.CancelActiveRun() })
	return cancelled, err
}

// StopSources completes every live source activation.
func (s *Sandbox) StopSources(ctx context.Context) error {
	return s.do(ctx, s.runner.StopSources)
}

// ClearLog empties the log.
func (s *Sandbox) ClearLog(ctx context.Context) error {
	return s.do(ctx, s.runner.ClearLog)
}

// Snapshot returns the runner state and log as seen from the loop.
func (s *Sandbox) Snapshot(ctx context.Context) (runner.Snapshot, error) {
	var snap runner.Snapshot
	err := s.do(ctx, func() { snap = s.runner.Snapshot() })
	return snap, err
}

// do runs fn on the loop, mapping loop and context failures to AppErrors.
func (s *Sandbox) do(ctx context.Context, fn func()) error {
	err := s.loop.Do(ctx, fn)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout("sandbox operation").WithCause(err)
	default:
		return errors.SandboxUnavailable(err)
	}
}
