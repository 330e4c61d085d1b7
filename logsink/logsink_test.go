package logsink

import (
	"sync"
	"testing"
)

func TestSink_AppendPreservesOrder(t *testing.T) {
	s := New()
	s.Append("a")
	s.Append("b")
	s.Append("c")

	got := s.Lines()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("unexpected lines %q", got)
	}
	if s.Len() != 3 {
		t.Errorf("expected Len 3, got %d", s.Len())
	}
}

func TestSink_LinesReturnsCopy(t *testing.T) {
	s := New()
	s.Append("a")
	got := s.Lines()
	got[0] = "mutated"
	if s.Lines()[0] != "a" {
		t.Error("Lines must not expose internal storage")
	}
}

func TestSink_ClearIsIdempotent(t *testing.T) {
	s := New()
	s.Append("a")
	s.Clear()
	s.Clear()
	if s.Len() != 0 || len(s.Lines()) != 0 {
		t.Errorf("expected empty sink, got %q", s.Lines())
	}
	s.Append("b")
	if got := s.Lines(); len(got) != 1 || got[0] != "b" {
		t.Errorf("expected [b] after clear, got %q", got)
	}
}

func TestSink_Listeners(t *testing.T) {
	s := New()
	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) { events = append(events, ev) })

	s.Append("x")
	s.Append("y")
	s.Clear()
	unsubscribe()
	unsubscribe()
	s.Append("z")

	want := []Event{
		{Type: EventAppend, Index: 0, Line: "x"},
		{Type: EventAppend, Index: 1, Line: "y"},
		{Type: EventClear},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: expected %+v, got %+v", i, want[i], events[i])
		}
	}
}

func TestSink_ListenersInRegistrationOrder(t *testing.T) {
	s := New()
	var order []int
	for i := 0; i < 5; i++ {
		s.Subscribe(func(Event) { order = append(order, i) })
	}
	s.Append("x")
	for i, v := range order {
		if v != i {
			t.Fatalf("expected registration order, got %v", order)
		}
	}
}

func TestSink_ListenerMayReadSink(t *testing.T) {
	s := New()
	var seen int
	s.Subscribe(func(Event) { seen = s.Len() })
	s.Append("x")
	if seen != 1 {
		t.Errorf("listener should observe the new line, saw %d", seen)
	}
}

func TestSink_ConcurrentReaders(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Lines()
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.Append("line")
	}
	wg.Wait()
	if s.Len() != 100 {
		t.Errorf("expected 100 lines, got %d", s.Len())
	}
}
