package stream

// Observer receives notifications from an Observable. Nil callbacks are
// ignored.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Subscription is the handle returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops delivery and releases the producer. Idempotent.
	Unsubscribe()
	// Closed reports whether the subscription has terminated.
	Closed() bool
}

// Subscriber is the producer-facing side of a subscription. Once Error,
// Complete or Unsubscribe has been called, further notifications are dropped.
type Subscriber[T any] struct {
	observer  Observer[T]
	closed    bool
	finalized bool
	teardowns []func()
}

var _ Subscription = (*Subscriber[int])(nil)

// Next delivers a value unless the subscriber is closed.
func (s *Subscriber[T]) Next(v T) {
	if s.closed {
		return
	}
	if s.observer.Next != nil {
		s.observer.Next(v)
	}
}

// Error terminates the subscription with err.
func (s *Subscriber[T]) Error(err error) {
	if s.closed {
		return
	}
	s.closed = true
	if s.observer.Error != nil {
		s.observer.Error(err)
	}
	s.finalize()
}

// Complete terminates the subscription normally.
func (s *Subscriber[T]) Complete() {
	if s.closed {
		return
	}
	s.closed = true
	if s.observer.Complete != nil {
		s.observer.Complete()
	}
	s.finalize()
}

// Unsubscribe closes the subscriber without notifying the observer.
func (s *Subscriber[T]) Unsubscribe() {
	s.closed = true
	s.finalize()
}

// Closed reports whether the subscriber has stopped accepting notifications.
func (s *Subscriber[T]) Closed() bool {
	return s.closed
}

// Add registers a teardown to run when the subscriber terminates. If it has
// already terminated, fn runs immediately.
func (s *Subscriber[T]) Add(fn func()) {
	if s.finalized {
		fn()
		return
	}
	s.teardowns = append(s.teardowns, fn)
}

func (s *Subscriber[T]) finalize() {
	if s.finalized {
		return
	}
	s.finalized = true
	fns := s.teardowns
	s.teardowns = nil
	for _, fn := range fns {
		fn()
	}
}

// Observable is a lazy push-based stream of values.
type Observable[T any] struct {
	produce func(*Subscriber[T])
}

// New creates an Observable from a producer function. The producer runs once
// per subscription and must register its cleanup with Subscriber.Add.
func New[T any](produce func(*Subscriber[T])) *Observable[T] {
	return &Observable[T]{produce: produce}
}

// Subscribe starts a new activation of the stream.
func (o *Observable[T]) Subscribe(obs Observer[T]) Subscription {
	s := &Subscriber[T]{observer: obs}
	o.produce(s)
	return s
}

// pipe subscribes dst to src with the given observer and ties their
// lifetimes together.
func pipe[T, R any](dst *Subscriber[R], src *Observable[T], obs Observer[T]) Subscription {
	sub := src.Subscribe(obs)
	dst.Add(sub.Unsubscribe)
	return sub
}

// passThrough returns an observer that forwards everything to dst.
func passThrough[T any](dst *Subscriber[T]) Observer[T] {
	return Observer[T]{Next: dst.Next, Error: dst.Error, Complete: dst.Complete}
}
