package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_ServesStaticFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"),
		[]byte("<html><body><h1>hi</h1></body></html>"), 0o644))

	port := freePort(t)
	s := New(root, port)
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	status, body := getBody(t, fmt.Sprintf("http://localhost:%d/", port))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>hi</h1>")
	// No live reload configured, no script injected.
	assert.NotContains(t, body, "livereload.js")
}

func TestServer_InjectsLiveReloadScriptIntoHTML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"),
		[]byte("<html><body>ok</body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.css"), []byte("body{}"), 0o644))

	port := freePort(t)
	s := New(root, port, WithLiveReload(NewLiveReloadHub()))
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	base := fmt.Sprintf("http://localhost:%d", port)

	_, html := getBody(t, base+"/index.html")
	assert.Contains(t, html, `src="/livereload.js"`)

	_, css := getBody(t, base+"/app.css")
	assert.NotContains(t, css, "livereload")

	status, script := getBody(t, base+"/livereload.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, script, "EventSource")
}

func TestServer_PortAlreadyBoundFailsFast(t *testing.T) {
	port := freePort(t)
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	s := New(t.TempDir(), port)
	err = s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind server port")
}

func TestServer_StopShutsDownGracefully(t *testing.T) {
	port := freePort(t)
	s := New(t.TempDir(), port, WithLiveReload(NewLiveReloadHub()))
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	_, err := http.Get(fmt.Sprintf("http://localhost:%d/", port))
	assert.Error(t, err)
}
