// Package events publishes build lifecycle events for external consumers
// (CI hooks, dashboards). Publishing is best-effort: failures are logged by
// callers and never fail a build.
package events

import (
	"context"
	"time"
)

// EventType identifies the build lifecycle stage an event describes.
type EventType string

const (
	TypeBuildCompleted EventType = "build.completed"
	TypeBuildFailed    EventType = "build.failed"
)

// BuildEvent is the payload published after each run invocation.
type BuildEvent struct {
	Type       EventType `json:"type"`
	RunID      string    `json:"run_id"`
	Task       string    `json:"task"`
	Files      int       `json:"files,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers build events to an external system.
type Publisher interface {
	Publish(ctx context.Context, evt BuildEvent) error
	Close()
}

// NoopPublisher is the default Publisher when events are not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BuildEvent) error { return nil }
func (NoopPublisher) Close()                                    {}
