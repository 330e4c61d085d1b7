// Package runner drives one pipeline at a time against the emitter registry
// and records every notification in the log sink.
//
// States:
//
//	idle → running → completed | failed | cancelled
//
// Starting a run always cancels the current subscription and stops every
// source before the log is cleared, so lines from two runs never interleave.
// A Runner is bound to the scheduler of its registry and must only be used
// from that scheduler's goroutine.
package runner
