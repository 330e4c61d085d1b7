// Package sandbox wires the emitter registry, the pipeline catalog, the
// runner and the log sink onto one scheduler loop and exposes them to
// concurrent callers.
//
// Every runner operation executes on the loop goroutine through
// scheduler.Loop.Do; callers on other goroutines block until it finishes
// or their context ends. Log lines can be read from any goroutine.
package sandbox
