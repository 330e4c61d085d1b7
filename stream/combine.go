package stream

// CombineLatest emits a snapshot of the latest value of every source whenever
// any source emits, once every source has emitted at least once. It completes
// when all sources complete, or immediately if a source completes without
// emitting.
func CombineLatest[T any](sources ...*Observable[T]) *Observable[[]T] {
	return New(func(dst *Subscriber[[]T]) {
		n := len(sources)
		if n == 0 {
			dst.Complete()
			return
		}
		values := make([]T, n)
		has := make([]bool, n)
		ready, active := 0, n
		for i, src := range sources {
			if dst.Closed() {
				return
			}
			pipe(dst, src, Observer[T]{
				Next: func(v T) {
					if !has[i] {
						has[i] = true
						ready++
					}
					values[i] = v
					if ready == n {
						dst.Next(snapshot(values))
					}
				},
				Error: dst.Error,
				Complete: func() {
					active--
					if active == 0 || !has[i] {
						dst.Complete()
					}
				},
			})
		}
	})
}

// ForkJoin waits for every source to complete and emits their last values
// once. If a source completes without emitting, the result completes empty.
// If a source never completes, ForkJoin never emits.
func ForkJoin[T any](sources ...*Observable[T]) *Observable[[]T] {
	return New(func(dst *Subscriber[[]T]) {
		n := len(sources)
		if n == 0 {
			dst.Complete()
			return
		}
		values := make([]T, n)
		has := make([]bool, n)
		remaining := n
		for i, src := range sources {
			if dst.Closed() {
				return
			}
			pipe(dst, src, Observer[T]{
				Next: func(v T) {
					has[i] = true
					values[i] = v
				},
				Error: dst.Error,
				Complete: func() {
					if !has[i] {
						dst.Complete()
						return
					}
					remaining--
					if remaining == 0 {
						dst.Next(snapshot(values))
						dst.Complete()
					}
				},
			})
		}
	})
}

// Concat subscribes to each source only after the previous one completed.
func Concat[T any](sources ...*Observable[T]) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		var next func(i int)
		next = func(i int) {
			if dst.Closed() {
				return
			}
			if i >= len(sources) {
				dst.Complete()
				return
			}
			pipe(dst, sources[i], Observer[T]{
				Next:     dst.Next,
				Error:    dst.Error,
				Complete: func() { next(i + 1) },
			})
		}
		next(0)
	})
}

// WithLatestFrom emits [value, latest companions...] for every value of src,
// provided every companion has emitted. Companions never trigger output and
// their completion is ignored.
func WithLatestFrom[T any](src *Observable[T], companions ...*Observable[T]) *Observable[[]T] {
	return New(func(dst *Subscriber[[]T]) {
		n := len(companions)
		latest := make([]T, n)
		has := make([]bool, n)
		ready := 0
		for i, c := range companions {
			if dst.Closed() {
				return
			}
			pipe(dst, c, Observer[T]{
				Next: func(v T) {
					if !has[i] {
						has[i] = true
						ready++
					}
					latest[i] = v
				},
				Error: dst.Error,
			})
		}
		if dst.Closed() {
			return
		}
		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				if ready < n {
					return
				}
				out := make([]T, 0, n+1)
				out = append(out, v)
				out = append(out, latest...)
				dst.Next(out)
			},
			Error:    dst.Error,
			Complete: dst.Complete,
		})
	})
}

func snapshot[T any](values []T) []T {
	out := make([]T, len(values))
	copy(out, values)
	return out
}
