package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	swerrors "github.com/sitewright/sitewright/internal/errors"
	"github.com/sitewright/sitewright/internal/logfields"
)

// Registry holds the declared tasks for one process. It is an explicit object
// rather than package-level state so tests can run independent registries.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	names []string // registration order
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Register adds a task to the registry. Duplicate or empty names are
// configuration errors; prerequisite names are resolved lazily at Run time so
// tasks may be registered in any order.
func (r *Registry) Register(name string, prereqs []string, action Action) error {
	if name == "" {
		return swerrors.ConfigError("task name must not be empty")
	}
	if action == nil {
		return swerrors.ConfigError("task action must not be nil").WithContext("task", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[name]; exists {
		return swerrors.ConfigError(fmt.Sprintf("duplicate task name: %q", name))
	}
	r.tasks[name] = &Task{Name: name, Prereqs: append([]string(nil), prereqs...), Action: action}
	r.names = append(r.names, name)
	return nil
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns task names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Run resolves the named task's transitive prerequisites depth-first and
// executes each action in that order, prerequisites strictly before
// dependents. A prerequisite shared by several tasks executes once per
// invocation. The first action failure aborts the remaining order.
//
// The returned Report is non-nil whenever resolution succeeded, including
// failed runs.
func (r *Registry) Run(ctx context.Context, name string) (*Report, error) {
	report := &Report{
		ID:      uuid.NewString(),
		Task:    name,
		State:   StatePending,
		Started: time.Now(),
	}

	report.State = StateResolving
	order, err := r.resolve(name)
	if err != nil {
		report.State = StateFailed
		report.Finished = time.Now()
		report.Err = err
		return nil, err
	}
	report.Order = order

	slog.Debug("task order resolved",
		logfields.Task(name), logfields.RunID(report.ID), slog.Any("order", order))

	report.State = StateExecuting
	for _, step := range order {
		if err := ctx.Err(); err != nil {
			report.State = StateFailed
			report.Finished = time.Now()
			report.Err = err
			return report, swerrors.Wrap(err, swerrors.CategoryTask, swerrors.SeverityError, "run canceled")
		}

		t, _ := r.Lookup(step)
		start := time.Now()
		if err := t.Action(ctx); err != nil {
			report.State = StateFailed
			report.Finished = time.Now()
			report.Err = err
			slog.Error("task failed",
				logfields.Task(step), logfields.RunID(report.ID), logfields.Error(err))
			return report, swerrors.Wrap(err, swerrors.CategoryTask, swerrors.SeverityError,
				fmt.Sprintf("task %q failed", step))
		}
		report.Executed = append(report.Executed, step)
		slog.Debug("task completed",
			logfields.Task(step), logfields.RunID(report.ID),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000.0))
	}

	report.State = StateCompleted
	report.Finished = time.Now()
	return report, nil
}

// resolve produces a linear execution order via depth-first traversal.
// Unknown prerequisite names and cycles are rejected before anything executes.
func (r *Registry) resolve(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var order []string
	done := make(map[string]bool)
	onPath := make(map[string]bool)

	var visit func(n string, path []string) error
	visit = func(n string, path []string) error {
		if done[n] {
			return nil
		}
		if onPath[n] {
			return swerrors.ConfigError(fmt.Sprintf("task dependency cycle: %v -> %q", path, n))
		}
		t, ok := r.tasks[n]
		if !ok {
			return swerrors.ConfigError(fmt.Sprintf("unresolvable task name: %q", n))
		}
		onPath[n] = true
		for _, p := range t.Prereqs {
			if err := visit(p, append(path, n)); err != nil {
				return err
			}
		}
		onPath[n] = false
		done[n] = true
		order = append(order, n)
		return nil
	}

	if err := visit(name, nil); err != nil {
		return nil, err
	}
	return order, nil
}
