package stream

import "errors"

// ErrNoElements is raised by First when the source completes without a
// matching value and no default was given.
var ErrNoElements = errors.New("no elements in sequence")

// Map transforms each value using fn. An error from fn terminates the stream.
func Map[I, O any](src *Observable[I], fn func(I) (O, error)) *Observable[O] {
	return New(func(dst *Subscriber[O]) {
		pipe(dst, src, Observer[I]{
			Next: func(v I) {
				out, err := fn(v)
				if err != nil {
					dst.Error(err)
					return
				}
				dst.Next(out)
			},
			Error:    dst.Error,
			Complete: dst.Complete,
		})
	})
}

// Filter keeps only values that satisfy the predicate.
func Filter[T any](src *Observable[T], fn func(T) bool) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				if fn(v) {
					dst.Next(v)
				}
			},
			Error:    dst.Error,
			Complete: dst.Complete,
		})
	})
}

// Tap calls fn as a side-effect for each value, then passes the value through
// unchanged.
func Tap[T any](src *Observable[T], fn func(T)) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				fn(v)
				dst.Next(v)
			},
			Error:    dst.Error,
			Complete: dst.Complete,
		})
	})
}

// Take emits the first n values and completes. With n <= 0 it completes
// without subscribing to src.
func Take[T any](src *Observable[T], n int) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		if n <= 0 {
			dst.Complete()
			return
		}
		seen := 0
		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				seen++
				dst.Next(v)
				if seen >= n {
					dst.Complete()
				}
			},
			Error:    dst.Error,
			Complete: dst.Complete,
		})
	})
}

// TakeWhile emits values while fn holds and completes on the first value
// that fails it. That value is not emitted.
func TakeWhile[T any](src *Observable[T], fn func(T) bool) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				if !fn(v) {
					dst.Complete()
					return
				}
				dst.Next(v)
			},
			Error:    dst.Error,
			Complete: dst.Complete,
		})
	})
}

// TakeUntil mirrors src until notifier emits, then completes. The notifier is
// subscribed first.
func TakeUntil[T, N any](src *Observable[T], notifier *Observable[N]) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		pipe(dst, notifier, Observer[N]{
			Next:  func(N) { dst.Complete() },
			Error: dst.Error,
		})
		if dst.Closed() {
			return
		}
		pipe(dst, src, passThrough(dst))
	})
}

// First emits the first value matching fn and completes. A nil fn matches
// anything. If src completes first, the stream fails with ErrNoElements.
func First[T any](src *Observable[T], fn func(T) bool) *Observable[T] {
	return first(src, fn, nil)
}

// FirstOr is First with a fallback emitted when no value matched.
func FirstOr[T any](src *Observable[T], fn func(T) bool, fallback T) *Observable[T] {
	return first(src, fn, &fallback)
}

func first[T any](src *Observable[T], fn func(T) bool, fallback *T) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				if fn == nil || fn(v) {
					dst.Next(v)
					dst.Complete()
				}
			},
			Error: dst.Error,
			Complete: func() {
				if fallback == nil {
					dst.Error(ErrNoElements)
					return
				}
				dst.Next(*fallback)
				dst.Complete()
			},
		})
	})
}

// DistinctUntilChanged drops values equal to the previous one.
func DistinctUntilChanged[T comparable](src *Observable[T]) *Observable[T] {
	return DistinctUntilKeyChanged(src, func(v T) T { return v })
}

// DistinctUntilKeyChanged drops values whose key equals the previous value's key.
func DistinctUntilKeyChanged[T any, K comparable](src *Observable[T], key func(T) K) *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		var last K
		seen := false
		pipe(dst, src, Observer[T]{
			Next: func(v T) {
				k := key(v)
				if seen && k == last {
					return
				}
				seen = true
				last = k
				dst.Next(v)
			},
			Error:    dst.Error,
			Complete: dst.Complete,
		})
	})
}
