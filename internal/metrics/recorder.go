// Package metrics defines observability hooks for task runs and build batches.
package metrics

import "time"

// ResultLabel enumerates run result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for task and batch metrics.
// Implementations may forward to Prometheus; the NoopRecorder allows
// optional injection.
type Recorder interface {
	ObserveRunDuration(taskName string, d time.Duration)
	IncRunResult(taskName string, result ResultLabel)
	AddFilesProcessed(n int)
	IncReloadBroadcast()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(string, time.Duration) {}
func (NoopRecorder) IncRunResult(string, ResultLabel)         {}
func (NoopRecorder) AddFilesProcessed(int)                    {}
func (NoopRecorder) IncReloadBroadcast()                      {}
