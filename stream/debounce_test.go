package stream_test

import (
	"testing"
	"time"

	"github.com/kbukum/rxlab/scheduler"
	"github.com/kbukum/rxlab/stream"
	"github.com/kbukum/rxlab/stream/streamtest"
)

func TestDebounceTime_FlushesOnCompletion(t *testing.T) {
	clock := scheduler.NewVirtual()
	rec := streamtest.NewRecorder[int](clock)
	rec.Subscribe(stream.DebounceTime(clock, stream.Take(stream.Interval(clock, time.Second), 3), 500*ms))

	clock.AdvanceBy(5 * time.Second)

	equalStrings(t, rec.Strings(), []string{"0", "1", "2"})
	equalTimes(t, rec.Times(), []time.Duration{1500 * ms, 2500 * ms, 3 * time.Second})
	if !rec.Completed() {
		t.Error("expected completion")
	}
}

func TestDebounceTime_SteadySourceNeverEmits(t *testing.T) {
	clock := scheduler.NewVirtual()
	rec := streamtest.NewRecorder[int](clock)
	rec.Subscribe(stream.DebounceTime(clock, stream.Interval(clock, time.Second), 3*time.Second))

	clock.AdvanceBy(10 * time.Second)

	if len(rec.Values()) != 0 {
		t.Errorf("expected no values, got %v", rec.Values())
	}
}

func TestDebounceTime_Burst(t *testing.T) {
	clock := scheduler.NewVirtual()
	subject := stream.NewSubject[int]()
	rec := streamtest.NewRecorder[int](clock)
	rec.Subscribe(stream.DebounceTime(clock, subject.Observable(), 500*ms))

	clock.Schedule(0, func() { subject.Next(1) })
	clock.Schedule(200*ms, func() { subject.Next(2) })
	clock.Schedule(400*ms, func() { subject.Next(3) })
	clock.Schedule(2*time.Second, func() { subject.Next(4) })
	clock.AdvanceBy(5 * time.Second)

	equalStrings(t, rec.Strings(), []string{"3", "4"})
	equalTimes(t, rec.Times(), []time.Duration{900 * ms, 2500 * ms})
}

func TestDebounce_Selector(t *testing.T) {
	clock := scheduler.NewVirtual()
	quiet := func(int) *stream.Observable[int] { return stream.Timer(clock, 500*ms) }
	rec := streamtest.NewRecorder[int](clock)
	rec.Subscribe(stream.Debounce(stream.Take(stream.Interval(clock, time.Second), 3), quiet))

	clock.AdvanceBy(5 * time.Second)

	equalStrings(t, rec.Strings(), []string{"0", "1", "2"})
	equalTimes(t, rec.Times(), []time.Duration{1500 * ms, 2500 * ms, 3 * time.Second})
	if !rec.Completed() {
		t.Error("expected completion")
	}
}

func TestDebounce_SteadySourceNeverEmits(t *testing.T) {
	clock := scheduler.NewVirtual()
	quiet := func(int) *stream.Observable[int] { return stream.Interval(clock, 3*time.Second) }
	rec := streamtest.NewRecorder[int](clock)
	sub := rec.Subscribe(stream.Debounce(stream.Interval(clock, time.Second), quiet))

	clock.AdvanceBy(10 * time.Second)
	sub.Unsubscribe()

	if len(rec.Values()) != 0 {
		t.Errorf("expected no values, got %v", rec.Values())
	}
	if clock.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", clock.Pending())
	}
}
