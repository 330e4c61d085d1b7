package scheduler

import "time"

// Scheduler schedules tasks on a single cooperative thread.
type Scheduler interface {
	// Now returns the time elapsed since the scheduler was created.
	Now() time.Duration
	// Schedule runs task once after delay. The returned cancel func prevents
	// the task from running if it has not run yet; calling it more than once
	// is a no-op.
	Schedule(delay time.Duration, task func()) (cancel func())
}

// PanicHandler receives values recovered from panicking tasks.
type PanicHandler func(recovered any)
