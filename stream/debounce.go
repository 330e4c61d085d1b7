package stream

import (
	"time"

	"github.com/kbukum/rxlab/scheduler"
)

// DebounceTime waits for silence of the given duration after the last value
// before emitting it. A new value during the quiet period restarts the timer
// and replaces the pending value. A pending value is flushed on completion.
func DebounceTime[T any](s scheduler.Scheduler, src *Observable[T], due time.Duration) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		var pending T
		has := false
		var cancel func()

		stopTimer := func() {
			if cancel != nil {
				cancel()
				cancel = nil
			}
		}
		dst.Add(stopTimer)

		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				pending = v
				has = true
				stopTimer()
				cancel = s.Schedule(due, func() {
					cancel = nil
					if has {
						has = false
						dst.Next(pending)
					}
				})
			},
			Error: dst.Error,
			Complete: func() {
				stopTimer()
				if has {
					has = false
					dst.Next(pending)
				}
				dst.Complete()
			},
		})
	})
}

// Debounce is DebounceTime with a quiet period defined per value by another
// stream: the pending value is emitted when the stream returned by selector
// first emits. A newer value cancels the previous quiet period.
func Debounce[T, D any](src *Observable[T], selector func(T) *Observable[D]) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		var pending T
		has := false
		var quiet Subscription

		stopQuiet := func() {
			if quiet != nil {
				quiet.Unsubscribe()
				quiet = nil
			}
		}
		dst.Add(stopQuiet)

		emit := func() {
			stopQuiet()
			if has {
				has = false
				dst.Next(pending)
			}
		}

		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				pending = v
				has = true
				stopQuiet()
				fired := false
				sub := selector(v).Subscribe(Observer[D]{
					Next: func(D) {
						if !fired {
							fired = true
							emit()
						}
					},
					Error: dst.Error,
				})
				if fired {
					sub.Unsubscribe()
					return
				}
				quiet = sub
			},
			Error: dst.Error,
			Complete: func() {
				emit()
				dst.Complete()
			},
		})
	})
}
