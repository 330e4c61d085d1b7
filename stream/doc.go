// Package stream provides composable, push-based reactive stream operators.
//
// Observables are lazy: nothing happens until Subscribe is called, and every
// subscription gets its own producer (timers, counters, inner subscriptions).
// All callbacks are expected to run on a single cooperative thread supplied
// by a scheduler.Scheduler, so operators keep plain, unsynchronized state.
//
// # Operators
//
// Creation:
//
//   - Interval, Timer: periodic and one-shot producers driven by a scheduler
//   - Of, Empty, Never, Throw: synchronous helpers
//   - Subject: multicast source driven by the caller
//
// Selection and shaping:
//
//   - Take, TakeWhile, TakeUntil, First, FirstOr
//   - Map, Filter, Tap
//   - DistinctUntilChanged, DistinctUntilKeyChanged
//
// Combination:
//
//   - CombineLatest: latest value of every source whenever any source emits
//   - ForkJoin: last value of every source once all have completed
//   - Concat: drain sources one after another
//   - WithLatestFrom: attach the latest companion values to a primary source
//
// Flattening (differ in how overlapping inner streams are handled):
//
//   - SwitchMap: a new outer value cancels the active inner stream
//   - MergeMap: inner streams run concurrently and interleave
//   - ConcatMap: inner streams are queued and run one at a time
//   - ExhaustMap: outer values are ignored while an inner stream is active
//
// Windowing and rate limiting:
//
//   - Buffer, BufferTime: release batches on a notifier or a timer
//   - Debounce, DebounceTime: forward the last value after a quiet period
//
// # Usage
//
//	clock := scheduler.NewVirtual()
//	evens := stream.Filter(stream.Interval(clock, time.Second), func(n int) bool { return n%2 == 0 })
//	sub := stream.Take(evens, 3).Subscribe(stream.Observer[int]{
//	    Next: func(n int) { fmt.Println(n) },
//	})
//	clock.AdvanceBy(10 * time.Second) // prints 0, 2, 4
//	sub.Unsubscribe()
package stream
