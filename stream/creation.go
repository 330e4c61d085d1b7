package stream

import (
	"time"

	"github.com/kbukum/rxlab/scheduler"
)

// Interval emits 0, 1, 2, ... spaced period apart, starting one period after
// subscription. Non-positive periods are raised to one millisecond.
func Interval(s scheduler.Scheduler, period time.Duration) *Observable[int] {
	if period <= 0 {
		period = time.Millisecond
	}
	return New(func(dst *Subscriber[int]) {
		n := 0
		var cancel func()
		var tick func()
		tick = func() {
			v := n
			n++
			dst.Next(v)
			if !dst.Closed() {
				cancel = s.Schedule(period, tick)
			}
		}
		cancel = s.Schedule(period, tick)
		dst.Add(func() { cancel() })
	})
}

// Timer emits 0 once after delay and completes.
func Timer(s scheduler.Scheduler, delay time.Duration) *Observable[int] {
	return New(func(dst *Subscriber[int]) {
		cancel := s.Schedule(delay, func() {
			dst.Next(0)
			dst.Complete()
		})
		dst.Add(cancel)
	})
}

// Of emits the given values synchronously and completes.
func Of[T any](values ...T) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		for _, v := range values {
			if dst.Closed() {
				return
			}
			dst.Next(v)
		}
		dst.Complete()
	})
}

// Empty completes immediately.
func Empty[T any]() *Observable[T] {
	return New(func(dst *Subscriber[T]) { dst.Complete() })
}

// Never emits nothing and never terminates.
func Never[T any]() *Observable[T] {
	return New(func(*Subscriber[T]) {})
}

// Throw fails immediately with err.
func Throw[T any](err error) *Observable[T] {
	return New(func(dst *Subscriber[T]) { dst.Error(err) })
}
