// Package task implements the named-task registry and dependency-ordered
// execution that drives every sitewright build.
package task

import (
	"context"
	"time"
)

// Action is the work a task performs. Actions must honor ctx cancellation at
// their I/O boundaries and return the first error they encounter.
type Action func(ctx context.Context) error

// Task is a named unit of build work with declared prerequisites.
type Task struct {
	Name    string
	Prereqs []string
	Action  Action
}

// RunState tracks a single Run invocation through its lifecycle.
type RunState string

const (
	StatePending   RunState = "pending"
	StateResolving RunState = "resolving"
	StateExecuting RunState = "executing"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// Report describes one Run invocation. It is returned for both completed and
// failed runs so callers can record history and metrics uniformly.
type Report struct {
	ID       string
	Task     string
	State    RunState
	Order    []string // resolved execution order, prerequisites first
	Executed []string // tasks whose actions ran (prefix of Order on failure)
	Started  time.Time
	Finished time.Time
	Err      error
}

// Duration returns the wall-clock time the invocation took.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
