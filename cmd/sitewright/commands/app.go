package commands

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sitewright/sitewright/internal/config"
	"github.com/sitewright/sitewright/internal/events"
	"github.com/sitewright/sitewright/internal/history"
	"github.com/sitewright/sitewright/internal/logfields"
	"github.com/sitewright/sitewright/internal/metrics"
	"github.com/sitewright/sitewright/internal/pipeline"
	"github.com/sitewright/sitewright/internal/schedule"
	"github.com/sitewright/sitewright/internal/server"
	"github.com/sitewright/sitewright/internal/task"
	"github.com/sitewright/sitewright/internal/watch"
)

// app bundles the wiring shared by every command: the task registry, the
// pipeline builder, and the optional server, scheduler, history store and
// event publisher.
type app struct {
	cfg      *config.Config
	registry *task.Registry
	builder  *pipeline.Builder

	hub       *server.LiveReloadHub
	srv       *server.Server
	scheduler *schedule.Scheduler

	recorder  metrics.Recorder
	promRec   *metrics.PrometheusRecorder
	publisher events.Publisher
	store     *history.Store

	files atomic.Int64 // files processed since the last recordRun
}

// newApp wires the application from configuration and registers the standard
// tasks. Registration errors are configuration errors and fatal at startup.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:       cfg,
		registry:  task.NewRegistry(),
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
	}

	if cfg.Server.Metrics {
		a.promRec = metrics.NewPrometheusRecorder()
		a.recorder = a.promRec
	}

	var opts []pipeline.Option
	opts = append(opts, pipeline.WithRecorder(a.recorder))
	if cfg.Server.LiveReload {
		a.hub = server.NewLiveReloadHub()
		opts = append(opts, pipeline.WithNotifier(a.hub))
	}
	a.builder = pipeline.NewBuilder(cfg.Source, cfg.Dest, opts...)

	if cfg.Events.URL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.URL, cfg.Events.Subject)
		if err != nil {
			// Event publishing is best-effort; a missing broker must not stop builds.
			slog.Warn("events disabled", logfields.Error(err))
		} else {
			a.publisher = pub
		}
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	if err := a.registerTasks(); err != nil {
		return nil, err
	}
	return a, nil
}

// registerTasks declares the standard task set. Names follow the pipeline
// vocabulary: copyhtml copies markup/static files, transform renders sources.
func (a *app) registerTasks() error {
	copyRules, transformRules := splitRules(a.cfg.Rules)

	regs := []struct {
		name    string
		prereqs []string
		action  task.Action
	}{
		{"clean", nil, a.builder.Clean},
		{"copyhtml", nil, a.batchAction(copyRules)},
		{"transform", nil, a.batchAction(transformRules)},
		{"build", []string{"copyhtml", "transform"}, func(context.Context) error { return nil }},
		{"connect", nil, a.startServer},
		{"watch", nil, a.startWatch},
		{"default", []string{"clean", "copyhtml", "transform", "connect", "watch"}, func(context.Context) error {
			slog.Info("pipeline ready", logfields.Port(a.cfg.Server.Port), logfields.Dest(a.cfg.Dest))
			return nil
		}},
	}
	for _, r := range regs {
		if err := a.registry.Register(r.name, r.prereqs, r.action); err != nil {
			return err
		}
	}
	return nil
}

func splitRules(rules []config.Rule) (copyRules, transformRules []config.Rule) {
	for _, r := range rules {
		if r.Transform == config.TransformCopy {
			copyRules = append(copyRules, r)
		} else {
			transformRules = append(transformRules, r)
		}
	}
	return copyRules, transformRules
}

// batchAction returns a task action executing the given rules as batches.
func (a *app) batchAction(rules []config.Rule) task.Action {
	return func(ctx context.Context) error {
		n, err := a.builder.Run(ctx, rules)
		a.files.Add(int64(n))
		return err
	}
}

// startServer is the "connect" task: it binds the port and serves in the
// background for the rest of the process lifetime.
func (a *app) startServer(ctx context.Context) error {
	var opts []server.Option
	if a.cfg.Server.LiveReload {
		opts = append(opts, server.WithLiveReload(a.hub))
	}
	if a.promRec != nil {
		opts = append(opts, server.WithMetricsHandler(a.promRec.Handler()))
	}
	a.srv = server.New(a.cfg.Dest, a.cfg.Server.Port, opts...)
	return a.srv.Start(ctx)
}

// startWatch is the "watch" task: it starts the change-event loop (and the
// optional rebuild scheduler) running until ctx is canceled.
func (a *app) startWatch(ctx context.Context) error {
	w, err := watch.New(a.cfg.Source, a.cfg.Bindings, a.registry, watch.WithObserver(
		func(taskName string, report *task.Report, err error) {
			a.recordRun(ctx, report, err)
		}))
	if err != nil {
		return err
	}
	go func() { _ = w.Run(ctx) }()

	if interval := time.Duration(a.cfg.Schedule.RebuildInterval); interval > 0 {
		s, err := schedule.New(a.registry)
		if err != nil {
			return err
		}
		if _, err := s.RunTaskEvery(ctx, interval, "build"); err != nil {
			return err
		}
		s.Start()
		a.scheduler = s
	}
	return nil
}

// recordRun persists, measures, and publishes one finished run invocation.
// All three sinks are best-effort.
func (a *app) recordRun(ctx context.Context, report *task.Report, runErr error) {
	if report == nil {
		return
	}
	files := int(a.files.Swap(0))

	result := metrics.ResultSuccess
	evtType := events.TypeBuildCompleted
	errText := ""
	if runErr != nil {
		result = metrics.ResultFailed
		evtType = events.TypeBuildFailed
		errText = runErr.Error()
	}

	a.recorder.ObserveRunDuration(report.Task, report.Duration())
	a.recorder.IncRunResult(report.Task, result)

	if a.store != nil {
		if err := a.store.Append(ctx, report, files); err != nil {
			slog.Warn("history append failed", logfields.Error(err))
		}
	}

	evt := events.BuildEvent{
		Type:       evtType,
		RunID:      report.ID,
		Task:       report.Task,
		Files:      files,
		DurationMS: report.Duration().Milliseconds(),
		Error:      errText,
		OccurredAt: time.Now(),
	}
	if err := a.publisher.Publish(ctx, evt); err != nil {
		slog.Warn("event publish failed", logfields.Error(err))
	}
}

// runAndRecord runs one task and records the invocation.
func (a *app) runAndRecord(ctx context.Context, name string) error {
	report, err := a.registry.Run(ctx, name)
	a.recordRun(ctx, report, err)
	return err
}

// shutdown tears down long-lived resources. Safe to call when they were
// never started.
func (a *app) shutdown(ctx context.Context) {
	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			slog.Warn("scheduler shutdown error", logfields.Error(err))
		}
	}
	if a.srv != nil {
		if err := a.srv.Stop(ctx); err != nil {
			slog.Warn("server shutdown error", logfields.Error(err))
		}
	}
	a.publisher.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("history close error", logfields.Error(err))
		}
	}
}
