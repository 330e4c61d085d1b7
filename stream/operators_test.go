package stream_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/rxlab/scheduler"
	"github.com/kbukum/rxlab/stream"
	"github.com/kbukum/rxlab/stream/streamtest"
)

const ms = time.Millisecond

func equalStrings(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d values %q, want %d values %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("value %d: got %q, want %q (all: %q)", i, got[i], want[i], got)
		}
	}
}

func equalTimes(t *testing.T, got, want []time.Duration) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got times %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("time %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInterval_Take(t *testing.T) {
	clock := scheduler.NewVirtual()
	rec := streamtest.NewRecorder[int](clock)
	rec.Subscribe(stream.Take(stream.Interval(clock, time.Second), 3))

	clock.AdvanceBy(10 * time.Second)

	equalStrings(t, rec.Strings(), []string{"0", "1", "2"})
	equalTimes(t, rec.Times(), []time.Duration{time.Second, 2 * time.Second, 3 * time.Second})
	if !rec.Completed() {
		t.Error("expected completion")
	}
	if clock.Pending() != 0 {
		t.Errorf("interval should be cancelled, %d tasks pending", clock.Pending())
	}
}

func TestTake_Zero(t *testing.T) {
	subscribed := false
	src := stream.New(func(dst *stream.Subscriber[int]) { subscribed = true })
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.Take(src, 0))

	if !rec.Completed() || len(rec.Values()) != 0 {
		t.Errorf("take(0) should complete empty, got %v completed=%v", rec.Values(), rec.Completed())
	}
	if subscribed {
		t.Error("take(0) must not subscribe to the source")
	}
}

func TestUnsubscribe_CancelsInterval(t *testing.T) {
	clock := scheduler.NewVirtual()
	rec := streamtest.NewRecorder[int](clock)
	sub := rec.Subscribe(stream.Interval(clock, time.Second))

	clock.AdvanceBy(2500 * ms)
	sub.Unsubscribe()
	sub.Unsubscribe()
	clock.AdvanceBy(10 * time.Second)

	equalStrings(t, rec.Strings(), []string{"0", "1"})
	if !sub.Closed() {
		t.Error("expected closed subscription")
	}
	if clock.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", clock.Pending())
	}
}

func TestFilterMap(t *testing.T) {
	evens := stream.Filter(stream.Of(1, 2, 3, 4, 5, 6), func(n int) bool { return n%2 == 0 })
	scaled := stream.Map(evens, func(n int) (string, error) { return fmt.Sprint(n * 10), nil })
	rec := streamtest.NewRecorder[string](nil)
	rec.Subscribe(scaled)

	equalStrings(t, rec.Values(), []string{"20", "40", "60"})
	if !rec.Completed() {
		t.Error("expected completion")
	}
}

func TestMap_Error(t *testing.T) {
	boom := errors.New("bad value")
	failing := stream.Map(stream.Of(1, 2, 3), func(n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(failing)

	equalStrings(t, rec.Strings(), []string{"1"})
	if !errors.Is(rec.Err(), boom) {
		t.Errorf("expected %v, got %v", boom, rec.Err())
	}
	if rec.Completed() {
		t.Error("errored stream must not complete")
	}
}

func TestTap(t *testing.T) {
	var seen []int
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.Tap(stream.Of(1, 2), func(n int) { seen = append(seen, n) }))
	if len(seen) != 2 || len(rec.Values()) != 2 {
		t.Errorf("tap saw %v, downstream got %v", seen, rec.Values())
	}
}

func TestTakeWhile(t *testing.T) {
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.TakeWhile(stream.Of(1, 2, 3, 1), func(n int) bool { return n < 3 }))
	equalStrings(t, rec.Strings(), []string{"1", "2"})
	if !rec.Completed() {
		t.Error("expected completion")
	}
}

func TestTakeUntil(t *testing.T) {
	clock := scheduler.NewVirtual()
	rec := streamtest.NewRecorder[int](clock)
	rec.Subscribe(stream.TakeUntil(stream.Interval(clock, time.Second), stream.Timer(clock, 3500*ms)))

	clock.AdvanceBy(10 * time.Second)

	equalStrings(t, rec.Strings(), []string{"0", "1", "2"})
	if !rec.Completed() {
		t.Error("expected completion when notifier fires")
	}
	if clock.Pending() != 0 {
		t.Errorf("expected source cancelled, %d pending", clock.Pending())
	}
}

func TestFirst(t *testing.T) {
	clock := scheduler.NewVirtual()
	rec := streamtest.NewRecorder[int](clock)
	rec.Subscribe(stream.First(stream.Interval(clock, time.Second), func(n int) bool { return n == 3 }))

	clock.AdvanceBy(10 * time.Second)

	equalStrings(t, rec.Strings(), []string{"3"})
	equalTimes(t, rec.Times(), []time.Duration{4 * time.Second})
	if !rec.Completed() {
		t.Error("expected completion")
	}
}

func TestFirst_NoElements(t *testing.T) {
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.First(stream.Of(1, 2), func(n int) bool { return n > 5 }))
	if !errors.Is(rec.Err(), stream.ErrNoElements) {
		t.Errorf("expected ErrNoElements, got %v", rec.Err())
	}
}

func TestFirstOr_Fallback(t *testing.T) {
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.FirstOr(stream.Of(1, 2), func(n int) bool { return n > 5 }, -1))
	equalStrings(t, rec.Strings(), []string{"-1"})
	if !rec.Completed() {
		t.Error("expected completion")
	}
}

func TestFirst_NilPredicate(t *testing.T) {
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.First(stream.Of(7, 8), nil))
	equalStrings(t, rec.Strings(), []string{"7"})
}

func TestDistinctUntilChanged(t *testing.T) {
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.DistinctUntilChanged(stream.Of(1, 1, 2, 2, 2, 1, 3)))
	equalStrings(t, rec.Strings(), []string{"1", "2", "1", "3"})
}

func TestDistinctUntilKeyChanged(t *testing.T) {
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.DistinctUntilKeyChanged(stream.Of(0, 1, 2, 3, 4, 5, 6, 7), func(n int) int { return n / 3 }))
	equalStrings(t, rec.Strings(), []string{"0", "3", "6"})
}

func TestThrowAndEmpty(t *testing.T) {
	boom := errors.New("boom")
	rec := streamtest.NewRecorder[int](nil)
	rec.Subscribe(stream.Throw[int](boom))
	if !errors.Is(rec.Err(), boom) {
		t.Errorf("expected boom, got %v", rec.Err())
	}

	empty := streamtest.NewRecorder[int](nil)
	empty.Subscribe(stream.Empty[int]())
	if !empty.Completed() {
		t.Error("Empty should complete")
	}

	never := streamtest.NewRecorder[int](nil)
	sub := never.Subscribe(stream.Never[int]())
	if never.Completed() || sub.Closed() {
		t.Error("Never should stay open")
	}
}

func TestSubject(t *testing.T) {
	subject := stream.NewSubject[int]()
	early := streamtest.NewRecorder[int](nil)
	early.Subscribe(subject.Observable())

	subject.Next(1)
	late := streamtest.NewRecorder[int](nil)
	lateSub := late.Subscribe(subject.Observable())
	subject.Next(2)

	if subject.Observers() != 2 {
		t.Errorf("expected 2 observers, got %d", subject.Observers())
	}
	lateSub.Unsubscribe()
	if subject.Observers() != 1 {
		t.Errorf("expected 1 observer after unsubscribe, got %d", subject.Observers())
	}
	subject.Complete()
	subject.Next(3)

	equalStrings(t, early.Strings(), []string{"1", "2"})
	equalStrings(t, late.Strings(), []string{"2"})
	if !early.Completed() {
		t.Error("expected completion")
	}

	afterwards := streamtest.NewRecorder[int](nil)
	afterwards.Subscribe(subject.Observable())
	if !afterwards.Completed() {
		t.Error("subscriber to a completed subject should complete immediately")
	}
}
