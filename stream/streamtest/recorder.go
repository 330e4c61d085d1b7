// Package streamtest provides helpers for testing stream pipelines.
package streamtest

import (
	"fmt"
	"time"

	"github.com/kbukum/rxlab/scheduler"
	"github.com/kbukum/rxlab/stream"
)

// Recorder records every notification of a subscription, optionally stamped
// with scheduler time.
type Recorder[T any] struct {
	clock     scheduler.Scheduler
	values    []T
	times     []time.Duration
	err       error
	completed bool
}

// NewRecorder creates a recorder. clock may be nil when timing is irrelevant.
func NewRecorder[T any](clock scheduler.Scheduler) *Recorder[T] {
	return &Recorder[T]{clock: clock}
}

// Observer returns an observer that feeds the recorder.
func (r *Recorder[T]) Observer() stream.Observer[T] {
	return stream.Observer[T]{
		Next: func(v T) {
			r.values = append(r.values, v)
			if r.clock != nil {
				r.times = append(r.times, r.clock.Now())
			}
		},
		Error:    func(err error) { r.err = err },
		Complete: func() { r.completed = true },
	}
}

// Subscribe subscribes the recorder to o.
func (r *Recorder[T]) Subscribe(o *stream.Observable[T]) stream.Subscription {
	return o.Subscribe(r.Observer())
}

// Values returns a copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Times returns the scheduler time of each recorded value.
func (r *Recorder[T]) Times() []time.Duration {
	out := make([]time.Duration, len(r.times))
	copy(out, r.times)
	return out
}

// Err returns the terminal error, if any.
func (r *Recorder[T]) Err() error { return r.err }

// Completed reports whether the stream completed normally.
func (r *Recorder[T]) Completed() bool { return r.completed }

// Strings renders the recorded values with fmt.
func (r *Recorder[T]) Strings() []string {
	out := make([]string, len(r.values))
	for i, v := range r.values {
		out[i] = fmt.Sprint(v)
	}
	return out
}
