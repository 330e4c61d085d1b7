package stream

// Subject is a multicast stream driven by its owner. Subscribers only see
// values pushed after they subscribed. Once terminated, late subscribers
// receive the terminal notification immediately.
type Subject[T any] struct {
	subscribers []*Subscriber[T]
	stopped     bool
	err         error
}

// NewSubject creates an empty subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Next pushes v to every current subscriber.
func (s *Subject[T]) Next(v T) {
	if s.stopped {
		return
	}
	for _, sub := range s.snapshot() {
		sub.Next(v)
	}
}

// Error terminates every subscriber with err.
func (s *Subject[T]) Error(err error) {
	if s.stopped {
		return
	}
	s.stopped = true
	s.err = err
	for _, sub := range s.snapshot() {
		sub.Error(err)
	}
	s.subscribers = nil
}

// Complete terminates every subscriber normally.
func (s *Subject[T]) Complete() {
	if s.stopped {
		return
	}
	s.stopped = true
	for _, sub := range s.snapshot() {
		sub.Complete()
	}
	s.subscribers = nil
}

// Observers returns the number of live subscribers.
func (s *Subject[T]) Observers() int {
	return len(s.subscribers)
}

// Observable exposes the subject as a read-only stream.
func (s *Subject[T]) Observable() *Observable[T] {
	return New(func(dst *Subscriber[T]) {
		if s.stopped {
			if s.err != nil {
				dst.Error(s.err)
			} else {
				dst.Complete()
			}
			return
		}
		s.subscribers = append(s.subscribers, dst)
		dst.Add(func() { s.remove(dst) })
	})
}

func (s *Subject[T]) snapshot() []*Subscriber[T] {
	subs := make([]*Subscriber[T], len(s.subscribers))
	copy(subs, s.subscribers)
	return subs
}

func (s *Subject[T]) remove(target *Subscriber[T]) {
	for i, sub := range s.subscribers {
		if sub == target {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return
		}
	}
}
