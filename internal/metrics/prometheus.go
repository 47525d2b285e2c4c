package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder backed by a private registry so
// multiple instances (tests) never collide on metric registration.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	runDuration    *prometheus.HistogramVec
	runResults     *prometheus.CounterVec
	filesProcessed prometheus.Counter
	reloads        prometheus.Counter
}

// NewPrometheusRecorder creates a recorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	r := &PrometheusRecorder{
		registry: reg,
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitewright_run_duration_seconds",
			Help:    "Wall-clock duration of task run invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
		runResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitewright_run_results_total",
			Help: "Task run invocations by result.",
		}, []string{"task", "result"}),
		filesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitewright_files_processed_total",
			Help: "Files copied or transformed into the destination.",
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitewright_reload_broadcasts_total",
			Help: "Live-reload broadcasts sent to connected clients.",
		}),
	}

	reg.MustRegister(r.runDuration, r.runResults, r.filesProcessed, r.reloads)
	return r
}

func (r *PrometheusRecorder) ObserveRunDuration(taskName string, d time.Duration) {
	r.runDuration.WithLabelValues(taskName).Observe(d.Seconds())
}

func (r *PrometheusRecorder) IncRunResult(taskName string, result ResultLabel) {
	r.runResults.WithLabelValues(taskName, string(result)).Inc()
}

func (r *PrometheusRecorder) AddFilesProcessed(n int) {
	r.filesProcessed.Add(float64(n))
}

func (r *PrometheusRecorder) IncReloadBroadcast() {
	r.reloads.Inc()
}

// Handler returns the HTTP handler exposing this recorder's registry.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
