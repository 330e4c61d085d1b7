package stream

import (
	"time"

	"github.com/kbukum/rxlab/scheduler"
)

// Buffer collects values from src and releases them as a batch every time
// notifier emits, including empty batches. When src completes, the pending
// batch is emitted before completion.
func Buffer[T, N any](src *Observable[T], notifier *Observable[N]) *Observable[[]T] {
	return New(func(dst *Subscriber[[]T]) {
		current := []T{}
		pipe(dst, src, Observer[T]{
			Next:  func(v T) { current = append(current, v) },
			Error: dst.Error,
			Complete: func() {
				batch := current
				current = nil
				dst.Next(batch)
				dst.Complete()
			},
		})
		if dst.Closed() {
			return
		}
		pipe(dst, notifier, Observer[N]{
			Next: func(N) {
				batch := current
				current = []T{}
				dst.Next(batch)
			},
			Error: dst.Error,
		})
	})
}

// BufferTime groups values into non-overlapping windows of span and emits each
// window when it closes, including empty windows. The open window is emitted
// when src completes.
func BufferTime[T any](s scheduler.Scheduler, src *Observable[T], span time.Duration) *Observable[[]T] {
	if span <= 0 {
		span = time.Millisecond
	}
	return New(func(dst *Subscriber[[]T]) {
		current := []T{}
		var cancel func()
		var flush func()
		flush = func() {
			batch := current
			current = []T{}
			dst.Next(batch)
			if !dst.Closed() {
				cancel = s.Schedule(span, flush)
			}
		}
		cancel = s.Schedule(span, flush)
		dst.Add(func() { cancel() })

		pipe(dst, src, Observer[T]{
			Next:  func(v T) { current = append(current, v) },
			Error: dst.Error,
			Complete: func() {
				cancel()
				batch := current
				current = nil
				dst.Next(batch)
				dst.Complete()
			},
		})
	})
}
