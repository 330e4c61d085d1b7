package sandbox

import (
	"fmt"
	"time"

	"github.com/kbukum/rxlab/catalog"
	"github.com/kbukum/rxlab/emitter"
	"github.com/kbukum/rxlab/errors"
	"github.com/kbukum/rxlab/logsink"
	"github.com/kbukum/rxlab/runner"
	"github.com/kbukum/rxlab/scheduler"
)

// DefaultSimulationDuration is how much virtual time Simulate covers when
// SimulateOptions.For is zero.
const DefaultSimulationDuration = 4 * time.Second

// SimulateOptions bounds a simulated run.
type SimulateOptions struct {
	// For is the total virtual time to advance.
	For time.Duration
	// StopAt cancels the run at this virtual offset when it is positive and
	// before For.
	StopAt time.Duration
}

// Simulate runs the named pipeline on a virtual clock and returns the final
// snapshot. No goroutines or timers are involved, so the output is
// deterministic.
func Simulate(cfg Config, name string, opts SimulateOptions, runnerOpts ...runner.Option) (runner.Snapshot, error) {
	if opts.For <= 0 {
		opts.For = DefaultSimulationDuration
	}
	if opts.StopAt < 0 {
		return runner.Snapshot{}, errors.InvalidInput("stop_at", "must not be negative")
	}

	clock := scheduler.NewVirtual()
	sink := logsink.New()
	sources := emitter.NewRegistry(clock, sink, cfg.Sources...)
	cat := catalog.Default(sources, cfg.Timing)
	r := runner.New(cfg.Runner, cat, sources, sink, runnerOpts...)
	clock.SetPanicHandler(func(p any) {
		r.Fail(fmt.Errorf("panic: %v", p))
	})

	if err := r.Run(name); err != nil {
		return r.Snapshot(), err
	}
	if opts.StopAt > 0 && opts.StopAt < opts.For {
		clock.AdvanceTo(opts.StopAt)
		r.CancelActiveRun()
	}
	clock.AdvanceTo(opts.For)
	return r.Snapshot(), nil
}
