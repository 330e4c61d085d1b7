// Package emitter owns the named periodic sources every pipeline is built
// from, and the shared stop signal that halts all of them at once.
package emitter

import (
	"fmt"
	"sort"
	"time"

	"github.com/kbukum/rxlab/logger"
	"github.com/kbukum/rxlab/scheduler"
	"github.com/kbukum/rxlab/stream"
)

// Emission is one value produced by a source.
type Emission struct {
	Tag      string `json:"tag"`
	Sequence int    `json:"sequence"`
	Message  string `json:"message"`
}

// String returns the display rendering, "<TAG>: <sequence>" for source emissions.
func (e Emission) String() string {
	return e.Message
}

// Sink receives one line per emission.
type Sink interface {
	Append(line string)
}

// Definition configures one named source.
type Definition struct {
	Tag         string        `mapstructure:"tag" validate:"required"`
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
	Description string        `mapstructure:"description"`
}

// Name is the catalog name of the source, e.g. "sourceA".
func (d Definition) Name() string {
	return "source" + d.Tag
}

// DefaultDefinitions returns the three standard sources.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Tag: "A", Interval: 1200 * time.Millisecond, Description: "Emits A: n every 1.2s"},
		{Tag: "B", Interval: 2200 * time.Millisecond, Description: "Emits B: n every 2.2s"},
		{Tag: "C", Interval: 3200 * time.Millisecond, Description: "Emits C: n every 3.2s"},
	}
}

// Source is a configured source ready to be subscribed.
type Source struct {
	Definition
	Observable *stream.Observable[Emission]
}

// Registry builds sources against one scheduler and stops them together.
// Like the scheduler it runs on, it is not safe for concurrent use.
type Registry struct {
	clock   scheduler.Scheduler
	sink    Sink
	stop    *stream.Subject[struct{}]
	sources map[string]Source
	log     *logger.Logger
}

// NewRegistry creates a registry. With no definitions the defaults are used.
func NewRegistry(clock scheduler.Scheduler, sink Sink, defs ...Definition) *Registry {
	if len(defs) == 0 {
		defs = DefaultDefinitions()
	}
	r := &Registry{
		clock:   clock,
		sink:    sink,
		stop:    stream.NewSubject[struct{}](),
		sources: make(map[string]Source, len(defs)),
		log:     logger.WithComponent("emitter"),
	}
	for _, d := range defs {
		r.sources[d.Tag] = Source{Definition: d, Observable: r.Tick(d.Tag, d.Interval)}
	}
	return r
}

// Tick returns a lazy, infinite source of emissions spaced interval apart.
// Each subscription is a fresh activation counting from zero. Every emission
// is written to the sink as "Source: <message>" before it is forwarded, and
// all activations end when StopAll is called.
func (r *Registry) Tick(tag string, interval time.Duration) *stream.Observable[Emission] {
	ticks := stream.Map(stream.Interval(r.clock, interval), func(n int) (Emission, error) {
		return Emission{Tag: tag, Sequence: n, Message: fmt.Sprintf("%s: %d", tag, n)}, nil
	})
	logged := stream.Tap(ticks, func(e Emission) {
		if r.sink != nil {
			r.sink.Append("Source: " + e.Message)
		}
	})
	return stream.TakeUntil(logged, r.stop.Observable())
}

// Source returns the configured source for tag.
func (r *Registry) Source(tag string) (Source, bool) {
	s, ok := r.sources[tag]
	return s, ok
}

// MustSource is Source for tags known to be configured.
func (r *Registry) MustSource(tag string) Source {
	s, ok := r.sources[tag]
	if !ok {
		panic(fmt.Sprintf("emitter: no source tagged %q", tag))
	}
	return s
}

// Sources lists the configured sources ordered by tag.
func (r *Registry) Sources() []Source {
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// StopAll completes every live activation. Calling it with nothing running
// is a no-op.
func (r *Registry) StopAll() {
	active := r.stop.Observers()
	r.stop.Next(struct{}{})
	if active > 0 {
		r.log.Debug("Sources stopped", logger.Fields("activations", active))
	}
}

// Active returns the number of live source activations.
func (r *Registry) Active() int {
	return r.stop.Observers()
}

// Sink returns the sink emissions are logged to.
func (r *Registry) Sink() Sink {
	return r.sink
}

// Scheduler returns the scheduler the sources run on.
func (r *Registry) Scheduler() scheduler.Scheduler {
	return r.clock
}
