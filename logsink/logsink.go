// Package logsink holds the ordered list of log lines a run produces and
// notifies listeners of every change.
package logsink

import (
	"slices"
	"sync"
)

// EventType distinguishes sink changes.
type EventType string

const (
	EventAppend EventType = "append"
	EventClear  EventType = "clear"
)

// Event describes one change. For appends, Index is the position of Line.
type Event struct {
	Type  EventType `json:"type"`
	Index int       `json:"index"`
	Line  string    `json:"line,omitempty"`
}

// Listener is notified after each change.
type Listener func(Event)

// Sink is an append-only list of lines that can only be emptied as a whole.
// Reads are safe from any goroutine. Listeners run synchronously on the
// writer's goroutine, outside the lock.
type Sink struct {
	mu        sync.RWMutex
	lines     []string
	listeners map[int]Listener
	nextID    int
}

// New creates an empty sink.
func New() *Sink {
	return &Sink{listeners: make(map[int]Listener)}
}

// Append adds line at the end.
func (s *Sink) Append(line string) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	ev := Event{Type: EventAppend, Index: len(s.lines) - 1, Line: line}
	ls := s.snapshotListeners()
	s.mu.Unlock()
	notify(ls, ev)
}

// Clear removes every line. Clearing an empty sink still notifies listeners.
func (s *Sink) Clear() {
	s.mu.Lock()
	s.lines = nil
	ls := s.snapshotListeners()
	s.mu.Unlock()
	notify(ls, Event{Type: EventClear})
}

// Lines returns a copy of the current lines.
func (s *Sink) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of lines.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Subscribe registers l and returns a function that removes it.
func (s *Sink) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Sink) snapshotListeners() []Listener {
	if len(s.listeners) == 0 {
		return nil
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

func notify(ls []Listener, ev Event) {
	for _, l := range ls {
		l(ev)
	}
}
