// Package runtime implements the story state machine: a single Position in the
// graph, condition-filtered choices, and effect accumulation on transition.
//
// A Runtime is synchronous and owns its Position. It never mutates the Story it
// was built from, so any number of runtimes may share one Story. A single
// Runtime is not safe for concurrent use; callers serialize access (see
// pkg/session).
package runtime
