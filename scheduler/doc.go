// Package scheduler provides single-threaded cooperative schedulers.
//
// Every callback handed to a Scheduler runs on one logical thread, one at a
// time. Waiting is always expressed as scheduling a future task; nothing
// blocks the thread.
//
// Two implementations are provided:
//
//   - Virtual: a deterministic virtual clock. Time only advances when the
//     caller asks it to. Due tasks run in deadline order, ties broken by
//     registration order.
//   - Loop: a real-time event loop owned by a single goroutine. Timers fire
//     through time.AfterFunc and are posted back onto the loop.
//
// # Usage
//
//	clock := scheduler.NewVirtual()
//	clock.Schedule(time.Second, func() { fmt.Println("tick") })
//	clock.AdvanceBy(1500 * time.Millisecond) // prints "tick"
package scheduler
