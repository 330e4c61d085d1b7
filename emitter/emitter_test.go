package emitter

import (
	"testing"
	"time"

	"github.com/kbukum/rxlab/scheduler"
	"github.com/kbukum/rxlab/stream"
)

type lines []string

func (l *lines) Append(line string) { *l = append(*l, line) }

func TestTick_EmitsAndLogs(t *testing.T) {
	clock := scheduler.NewVirtual()
	var sink lines
	reg := NewRegistry(clock, &sink)

	var got []Emission
	reg.MustSource("A").Observable.Subscribe(stream.Observer[Emission]{
		Next: func(e Emission) { got = append(got, e) },
	})
	clock.AdvanceBy(3600 * time.Millisecond)

	if len(got) != 3 {
		t.Fatalf("expected 3 emissions, got %v", got)
	}
	for i, e := range got {
		if e.Tag != "A" || e.Sequence != i {
			t.Errorf("emission %d: got %+v", i, e)
		}
	}
	if got[2].String() != "A: 2" {
		t.Errorf("expected rendering %q, got %q", "A: 2", got[2].String())
	}
	want := []string{"Source: A: 0", "Source: A: 1", "Source: A: 2"}
	if len(sink) != len(want) {
		t.Fatalf("expected sink %q, got %q", want, sink)
	}
	for i := range want {
		if sink[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], sink[i])
		}
	}
}

func TestTick_SinkLineBeforeDownstream(t *testing.T) {
	clock := scheduler.NewVirtual()
	var sink lines
	reg := NewRegistry(clock, &sink)

	reg.MustSource("A").Observable.Subscribe(stream.Observer[Emission]{
		Next: func(e Emission) { sink.Append("got " + e.Message) },
	})
	clock.AdvanceBy(1200 * time.Millisecond)

	if len(sink) != 2 || sink[0] != "Source: A: 0" || sink[1] != "got A: 0" {
		t.Errorf("unexpected order %q", sink)
	}
}

func TestStopAll_CompletesActivations(t *testing.T) {
	clock := scheduler.NewVirtual()
	reg := NewRegistry(clock, nil)

	completed := 0
	for _, tag := range []string{"A", "B", "C"} {
		reg.MustSource(tag).Observable.Subscribe(stream.Observer[Emission]{
			Complete: func() { completed++ },
		})
	}
	if reg.Active() != 3 {
		t.Fatalf("expected 3 activations, got %d", reg.Active())
	}

	reg.StopAll()
	reg.StopAll()

	if completed != 3 {
		t.Errorf("expected 3 completions, got %d", completed)
	}
	if reg.Active() != 0 {
		t.Errorf("expected no activations, got %d", reg.Active())
	}
	if clock.Pending() != 0 {
		t.Errorf("expected timers cancelled, %d pending", clock.Pending())
	}
}

func TestStopAll_IdleIsNoop(t *testing.T) {
	reg := NewRegistry(scheduler.NewVirtual(), nil)
	reg.StopAll()
	if reg.Active() != 0 {
		t.Error("expected nothing active")
	}
}

func TestSource_FreshActivationAfterStop(t *testing.T) {
	clock := scheduler.NewVirtual()
	reg := NewRegistry(clock, nil)
	src := reg.MustSource("B").Observable

	var first, second []int
	src.Subscribe(stream.Observer[Emission]{Next: func(e Emission) { first = append(first, e.Sequence) }})
	clock.AdvanceBy(4400 * time.Millisecond)
	reg.StopAll()

	src.Subscribe(stream.Observer[Emission]{Next: func(e Emission) { second = append(second, e.Sequence) }})
	clock.AdvanceBy(2200 * time.Millisecond)

	if len(first) != 2 {
		t.Errorf("expected 2 emissions before stop, got %v", first)
	}
	if len(second) != 1 || second[0] != 0 {
		t.Errorf("expected a fresh activation starting at 0, got %v", second)
	}
}

func TestRegistry_Sources(t *testing.T) {
	reg := NewRegistry(scheduler.NewVirtual(), nil)

	srcs := reg.Sources()
	if len(srcs) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(srcs))
	}
	names := []string{"sourceA", "sourceB", "sourceC"}
	intervals := []time.Duration{1200 * time.Millisecond, 2200 * time.Millisecond, 3200 * time.Millisecond}
	for i, s := range srcs {
		if s.Name() != names[i] || s.Interval != intervals[i] {
			t.Errorf("source %d: got %s every %v", i, s.Name(), s.Interval)
		}
	}
	if _, ok := reg.Source("Z"); ok {
		t.Error("unexpected source Z")
	}
}

func TestRegistry_CustomDefinitions(t *testing.T) {
	clock := scheduler.NewVirtual()
	reg := NewRegistry(clock, nil, Definition{Tag: "X", Interval: 100 * time.Millisecond})

	count := 0
	reg.MustSource("X").Observable.Subscribe(stream.Observer[Emission]{Next: func(Emission) { count++ }})
	clock.AdvanceBy(time.Second)

	if count != 10 {
		t.Errorf("expected 10 emissions, got %d", count)
	}
	if reg.Scheduler() != clock {
		t.Error("expected the registry scheduler to be the virtual clock")
	}
}

func TestMustSource_PanicsOnUnknownTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewRegistry(scheduler.NewVirtual(), nil).MustSource("Q")
}
