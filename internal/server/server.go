// Package server serves the destination directory over HTTP with optional
// SSE-based live reload and a Prometheus metrics endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	swerrors "github.com/sitewright/sitewright/internal/errors"
	"github.com/sitewright/sitewright/internal/logfields"
)

// Server is a static file server bound to one root directory and one port.
// It lives for the process lifetime and is torn down via Stop.
type Server struct {
	root       string
	port       int
	liveReload bool
	hub        *LiveReloadHub
	metrics    http.Handler

	srv *http.Server
	ln  net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithLiveReload enables the SSE hub and script injection.
func WithLiveReload(hub *LiveReloadHub) Option {
	return func(s *Server) {
		s.liveReload = hub != nil
		s.hub = hub
	}
}

// WithMetricsHandler mounts a metrics handler at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a server for root on the given port.
func New(root string, port int, opts ...Option) *Server {
	s := &Server{root: root, port: port}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the live-reload hub, or nil when live reload is disabled.
func (s *Server) Hub() *LiveReloadHub {
	return s.hub
}

// Addr returns the bound address after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Start pre-binds the listener so an already-bound port fails fast, then
// serves in the background until Stop.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return swerrors.Wrap(err, swerrors.CategoryServer, swerrors.SeverityFatal, "bind server port").
			WithContext("port", s.port)
	}
	s.ln = ln

	mux := http.NewServeMux()
	var static http.Handler = http.FileServer(http.Dir(s.root))
	if s.liveReload {
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			if _, err := w.Write([]byte(liveReloadScript)); err != nil {
				slog.Error("failed to write livereload script", logfields.Error(err))
			}
		})
		static = injectLiveReloadScript(static)
	}
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	mux.Handle("/", static)

	// SSE connections are long-lived; no write timeout.
	s.srv = &http.Server{
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 300 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logfields.Error(err))
		}
	}()

	slog.Info("server listening",
		logfields.Port(s.port), slog.String("root", s.root), slog.Bool("live_reload", s.liveReload))
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Shutdown()
	}
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return swerrors.Wrap(err, swerrors.CategoryServer, swerrors.SeverityError, "shutdown server")
	}
	return nil
}
