package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/rxlab/logger"
)

// ErrStopped is returned when work is submitted to a stopped Loop.
var ErrStopped = errors.New("scheduler: loop stopped")

// Loop is a real-time Scheduler owned by one goroutine. Every task and every
// timer callback runs on the goroutine that called Run.
type Loop struct {
	start   time.Time
	tasks   chan func()
	done    chan struct{}
	exited  chan struct{}
	stopped bool
	mu      sync.Mutex
	onPanic PanicHandler
	log     *logger.Logger
}

var _ Scheduler = (*Loop)(nil)

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithPanicHandler installs a handler invoked on the loop for recovered panics.
func WithPanicHandler(h PanicHandler) LoopOption {
	return func(l *Loop) { l.onPanic = h }
}

// WithQueueSize sets the capacity of the task queue.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

// NewLoop creates a loop. Call Run (usually in its own goroutine) to start
// processing tasks.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		start:  time.Now(),
		tasks:  make(chan func(), 256),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		log:    logger.WithComponent("scheduler"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetPanicHandler replaces the panic handler. Call it before Run.
func (l *Loop) SetPanicHandler(h PanicHandler) {
	l.onPanic = h
}

// Run processes tasks until Stop is called. It blocks.
func (l *Loop) Run() {
	defer close(l.exited)
	for {
		select {
		case <-l.done:
			return
		case fn := <-l.tasks:
			l.execute(fn)
		}
	}
}

// Stop makes Run return. Tasks still queued are dropped. Safe to call
// multiple times.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stopped {
		l.stopped = true
		close(l.done)
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.exited
}

// Now returns the wall time elapsed since the loop was created.
func (l *Loop) Now() time.Duration {
	return time.Since(l.start)
}

// Post queues fn to run on the loop. It reports false when the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to return. If ctx is done before
// the loop reaches fn, fn is skipped and ctx's error is returned.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	ran := false
	if !l.Post(func() {
		defer close(finished)
		if ctx.Err() != nil {
			return
		}
		ran = true
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		if !ran {
			return ctx.Err()
		}
		return nil
	case <-l.exited:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule runs task on the loop after delay. A timer that already fired but
// whose callback is still queued is discarded once cancelled.
func (l *Loop) Schedule(delay time.Duration, task func()) func() {
	if delay < 0 {
		delay = 0
	}
	var cancelled atomic.Bool
	timer := time.AfterFunc(delay, func() {
		l.Post(func() {
			if cancelled.Load() {
				return
			}
			task()
		})
	})
	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("Task panicked", logger.Fields(
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			))
			if l.onPanic != nil {
				l.onPanic(r)
			}
		}
	}()
	fn()
}
