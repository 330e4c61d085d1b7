package stream

// SwitchMap projects each outer value to an inner stream and mirrors only the
// most recent one. A new outer value unsubscribes the active inner stream.
// Completes once the outer stream and the active inner stream have completed.
func SwitchMap[T, R any](src *Observable[T], project func(T) *Observable[R]) *Observable[R] {
	return New(func(dst *Subscriber[R]) {
		var inner Subscription
		innerActive := false
		outerDone := false
		generation := 0

		dst.Add(func() {
			if inner != nil {
				inner.Unsubscribe()
			}
		})

		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				if inner != nil {
					inner.Unsubscribe()
					inner = nil
				}
				generation++
				current := generation
				innerActive = true
				sub := project(v).Subscribe(Observer[R]{
					Next:  dst.Next,
					Error: dst.Error,
					Complete: func() {
						if current != generation {
							return
						}
						innerActive = false
						inner = nil
						if outerDone {
							dst.Complete()
						}
					},
				})
				if current == generation && innerActive {
					inner = sub
				}
			},
			Error: dst.Error,
			Complete: func() {
				outerDone = true
				if !innerActive {
					dst.Complete()
				}
			},
		})
	})
}

// MergeMap projects each outer value to an inner stream and runs all inner
// streams concurrently, interleaving their values.
func MergeMap[T, R any](src *Observable[T], project func(T) *Observable[R]) *Observable[R] {
	return flatten(src, project, 0, false)
}

// ConcatMap projects each outer value to an inner stream and runs the inner
// streams strictly one at a time in outer order, queueing pending values.
func ConcatMap[T, R any](src *Observable[T], project func(T) *Observable[R]) *Observable[R] {
	return flatten(src, project, 1, false)
}

// ExhaustMap projects an outer value to an inner stream only when no inner
// stream is active. Outer values arriving meanwhile are dropped.
func ExhaustMap[T, R any](src *Observable[T], project func(T) *Observable[R]) *Observable[R] {
	return flatten(src, project, 1, true)
}

// flatten is the shared engine of MergeMap, ConcatMap and ExhaustMap.
// limit <= 0 means unbounded concurrency. When busy, outer values are either
// queued or dropped.
func flatten[T, R any](src *Observable[T], project func(T) *Observable[R], limit int, dropWhenBusy bool) *Observable[R] {
	return New(func(dst *Subscriber[R]) {
		active := 0
		outerDone := false
		var queue []T
		inners := make(map[int]Subscription)
		nextID := 0

		dst.Add(func() {
			for id, sub := range inners {
				delete(inners, id)
				sub.Unsubscribe()
			}
		})

		checkComplete := func() {
			if outerDone && active == 0 && len(queue) == 0 {
				dst.Complete()
			}
		}

		var subscribeInner func(v T)
		subscribeInner = func(v T) {
			active++
			id := nextID
			nextID++
			done := false
			sub := project(v).Subscribe(Observer[R]{
				Next:  dst.Next,
				Error: dst.Error,
				Complete: func() {
					done = true
					delete(inners, id)
					active--
					if len(queue) > 0 && !dst.Closed() {
						head := queue[0]
						queue = queue[1:]
						subscribeInner(head)
					}
					checkComplete()
				},
			})
			if !done {
				inners[id] = sub
			}
		}

		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				if limit > 0 && active >= limit {
					if !dropWhenBusy {
						queue = append(queue, v)
					}
					return
				}
				subscribeInner(v)
			},
			Error: dst.Error,
			Complete: func() {
				outerDone = true
				checkComplete()
			},
		})
	})
}
