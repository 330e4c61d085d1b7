package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/rxlab/catalog"
	"github.com/kbukum/rxlab/emitter"
	"github.com/kbukum/rxlab/errors"
	"github.com/kbukum/rxlab/logger"
	"github.com/kbukum/rxlab/observability"
	"github.com/kbukum/rxlab/scheduler"
	"github.com/kbukum/rxlab/stream"
)

const tracerName = "github.com/kbukum/rxlab/runner"

// Sink is the ordered log a run writes to.
type Sink interface {
	Append(line string)
	Clear()
	Lines() []string
}

// Option configures a Runner.
type Option func(*Runner)

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithMetrics enables run metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithWallClock overrides the wall clock used for StartedAt.
func WithWallClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithIDGenerator overrides run ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

type activeRun struct {
	id         string
	pipeline   string
	state      State
	startedAt  time.Time
	startTick  time.Duration
	values     int
	err        error
	sub        stream.Subscription
	span       trace.Span
	generation uint64
}

// Runner is the run/cancel/clear state machine over a single active run.
type Runner struct {
	cfg     Config
	catalog *catalog.Catalog
	sources *emitter.Registry
	sink    Sink
	clock   scheduler.Scheduler

	tracer  trace.Tracer
	metrics *observability.Metrics
	now     func() time.Time
	newID   func() string
	log     *logger.Logger

	generation uint64
	run        *activeRun
}

// New creates an idle runner.
func New(cfg Config, cat *catalog.Catalog, sources *emitter.Registry, sink Sink, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		catalog: cat,
		sources: sources,
		sink:    sink,
		clock:   sources.Scheduler(),
		tracer:  observability.Tracer(tracerName),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		log:     logger.WithComponent("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the named pipeline. The current run is cancelled, every source
// is stopped and the log is cleared first. An unknown name returns
// UNKNOWN_PIPELINE and leaves the runner idle with an empty log.
func (r *Runner) Run(name string) error {
	r.finish(StateCancelled, nil)
	r.sources.StopAll()
	r.sink.Clear()

	def, err := r.catalog.Lookup(name)
	if err != nil {
		r.run = nil
		r.log.Warn("Unknown pipeline", logger.Fields("pipeline", name))
		if r.metrics != nil {
			r.metrics.RecordError(context.Background(), string(errors.ErrCodeUnknownPipeline), "runner")
		}
		return err
	}

	r.generation++
	run := &activeRun{
		id:         r.newID(),
		pipeline:   def.Name,
		state:      StateRunning,
		startedAt:  r.now(),
		startTick:  r.clock.Now(),
		generation: r.generation,
	}
	_, run.span = r.tracer.Start(context.Background(), observability.SpanRun, trace.WithAttributes(
		attribute.String(observability.AttrRunID, run.id),
		attribute.String(observability.AttrPipeline, run.pipeline),
	))
	r.run = run
	if r.metrics != nil {
		r.metrics.RecordRunStart(context.Background(), run.pipeline)
	}
	r.log.Info("Run started", logger.Fields("run_id", run.id, "pipeline", run.pipeline))

	r.sink.Append(LineSubscribing)
	r.sink.Append(LineSeparator)

	// The subscription may terminate synchronously, so run must already be
	// current when Subscribe is called.
	sub := def.Observable.Subscribe(stream.Observer[any]{
		Next: func(v any) {
			if !r.current(run) {
				return
			}
			run.values++
			r.sink.Append("Subscription: " + Render(v))
			r.sink.Append(LineSeparator)
			if r.metrics != nil {
				r.metrics.RecordValue(context.Background(), run.pipeline)
			}
		},
		Error: func(err error) {
			if !r.current(run) {
				return
			}
			r.sink.Append("Subscription error: " + err.Error())
			r.finish(StateFailed, err)
		},
		Complete: func() {
			if !r.current(run) {
				return
			}
			r.sink.Append(LineCompleted)
			r.sink.Append(LineDone)
			r.finish(StateCompleted, nil)
		},
	})
	if run.state != StateRunning {
		sub.Unsubscribe()
		return nil
	}
	run.sub = sub
	return nil
}

// CancelActiveRun unsubscribes the active run without touching the log.
// Sources keep running unless Config.CancelStopsSources is set. It reports
// whether a run was cancelled.
func (r *Runner) CancelActiveRun() bool {
	cancelled := r.finish(StateCancelled, nil)
	if r.cfg.CancelStopsSources {
		r.sources.StopAll()
	}
	return cancelled
}

// Fail terminates the active run as failed, logging err as its error line.
// It is used for failures raised outside the stream, such as a panicking
// scheduler task.
func (r *Runner) Fail(err error) bool {
	if r.run == nil || r.run.state != StateRunning {
		return false
	}
	r.sink.Append("Subscription error: " + err.Error())
	return r.finish(StateFailed, err)
}

// StopSources completes every live source activation.
func (r *Runner) StopSources() {
	r.sources.StopAll()
}

// ClearLog empties the log. Sources and the active run are unaffected.
func (r *Runner) ClearLog() {
	r.sink.Clear()
}

// State returns the current state.
func (r *Runner) State() State {
	if r.run == nil {
		return StateIdle
	}
	return r.run.state
}

// Snapshot returns the current run and log.
func (r *Runner) Snapshot() Snapshot {
	s := Snapshot{State: StateIdle, Lines: r.sink.Lines()}
	if r.run == nil {
		return s
	}
	started := r.run.startedAt
	s.RunID = r.run.id
	s.Pipeline = r.run.pipeline
	s.State = r.run.state
	s.StartedAt = &started
	s.Values = r.run.values
	if r.run.err != nil {
		s.Error = r.run.err.Error()
	}
	return s
}

// current reports whether callbacks of run may still take effect.
func (r *Runner) current(run *activeRun) bool {
	return r.run == run && run.generation == r.generation && run.state == StateRunning
}

// finish moves the active run to a terminal state, releasing its
// subscription. It reports whether a running run was finished.
func (r *Runner) finish(state State, err error) bool {
	run := r.run
	if run == nil || run.state != StateRunning {
		return false
	}
	run.state = state
	run.err = err
	if run.sub != nil {
		sub := run.sub
		run.sub = nil
		sub.Unsubscribe()
	}

	elapsed := r.clock.Now() - run.startTick
	fields := logger.Fields("run_id", run.id, "pipeline", run.pipeline, "state", string(state), "values", run.values)
	switch state {
	case StateFailed:
		failure := errors.PipelineFailed(run.pipeline, err)
		run.span.RecordError(failure)
		run.span.SetStatus(codes.Error, err.Error())
		r.log.Warn("Run failed", logger.MergeWithError(fields, failure))
		if r.metrics != nil {
			r.metrics.RecordError(context.Background(), string(errors.ErrCodePipelineFailed), "runner")
		}
	case StateCompleted:
		run.span.SetStatus(codes.Ok, "")
		r.log.Info("Run completed", fields)
	default:
		r.log.Debug("Run cancelled", fields)
	}
	run.span.SetAttributes(
		attribute.String(observability.AttrRunState, string(state)),
		attribute.Int(observability.AttrRunValues, run.values),
	)
	run.span.End()

	if r.metrics != nil {
		r.metrics.RecordRunEnd(context.Background(), run.pipeline, string(state), elapsed)
	}
	return true
}
