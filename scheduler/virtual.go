package scheduler

import (
	"container/heap"
	"time"
)

// Virtual is a deterministic Scheduler driven by an explicit virtual clock.
// It is not safe for concurrent use; drive it from a single goroutine.
type Virtual struct {
	now     time.Duration
	seq     uint64
	queue   taskQueue
	onPanic PanicHandler
}

var _ Scheduler = (*Virtual)(nil)

// NewVirtual creates a virtual clock positioned at zero.
func NewVirtual() *Virtual {
	return &Virtual{}
}

// SetPanicHandler installs a handler for panicking tasks. With no handler
// installed, a panicking task propagates to the caller of AdvanceBy.
func (v *Virtual) SetPanicHandler(h PanicHandler) {
	v.onPanic = h
}

// Now returns the current virtual time.
func (v *Virtual) Now() time.Duration {
	return v.now
}

// Schedule registers task to run at Now()+delay. Negative delays are treated
// as zero.
func (v *Virtual) Schedule(delay time.Duration, task func()) func() {
	if delay < 0 {
		delay = 0
	}
	v.seq++
	t := &timedTask{due: v.now + delay, seq: v.seq, run: task}
	heap.Push(&v.queue, t)
	return func() { t.cancelled = true }
}

// AdvanceBy moves the clock forward by d, running every task that becomes
// due on the way.
func (v *Virtual) AdvanceBy(d time.Duration) {
	v.AdvanceTo(v.now + d)
}

// AdvanceTo moves the clock to t, running every task due at or before t.
// Moving backwards is a no-op.
func (v *Virtual) AdvanceTo(t time.Duration) {
	for v.queue.Len() > 0 {
		next := v.queue[0]
		if next.due > t {
			break
		}
		heap.Pop(&v.queue)
		if next.cancelled {
			continue
		}
		if next.due > v.now {
			v.now = next.due
		}
		v.execute(next.run)
	}
	if t > v.now {
		v.now = t
	}
}

// Flush runs tasks until none remain. Infinite producers never drain, so
// Flush stops after limit tasks and reports whether the queue emptied.
func (v *Virtual) Flush(limit int) bool {
	for ran := 0; ran < limit; ran++ {
		next := v.pop()
		if next == nil {
			return true
		}
		if next.due > v.now {
			v.now = next.due
		}
		v.execute(next.run)
	}
	return v.Pending() == 0
}

// Pending returns the number of live scheduled tasks.
func (v *Virtual) Pending() int {
	n := 0
	for _, t := range v.queue {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (v *Virtual) pop() *timedTask {
	for v.queue.Len() > 0 {
		t := heap.Pop(&v.queue).(*timedTask)
		if !t.cancelled {
			return t
		}
	}
	return nil
}

func (v *Virtual) execute(task func()) {
	if v.onPanic == nil {
		task()
		return
	}
	defer func() {
		if r := recover(); r != nil {
			v.onPanic(r)
		}
	}()
	task()
}

type timedTask struct {
	due       time.Duration
	seq       uint64
	run       func()
	cancelled bool
}

// taskQueue is a min-heap ordered by deadline, then registration order.
type taskQueue []*timedTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*timedTask)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
