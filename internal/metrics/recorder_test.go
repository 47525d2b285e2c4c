package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_ExposesMetrics(t *testing.T) {
	r := NewPrometheusRecorder()
	r.ObserveRunDuration("default", 120*time.Millisecond)
	r.IncRunResult("default", ResultSuccess)
	r.IncRunResult("copyhtml", ResultFailed)
	r.AddFilesProcessed(4)
	r.IncReloadBroadcast()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, "sitewright_run_results_total")
	assert.Contains(t, text, "sitewright_files_processed_total")
	assert.Contains(t, text, "sitewright_reload_broadcasts_total")
}

func TestNoopRecorder_IsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRunDuration("x", time.Second)
	r.IncRunResult("x", ResultSuccess)
	r.AddFilesProcessed(1)
	r.IncReloadBroadcast()
}
