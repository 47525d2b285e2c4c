package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/sitewright/sitewright/internal/config"
)

// ServeCmd serves the destination directory with live reload until signaled.
type ServeCmd struct {
	Dest string `short:"d" help:"Destination directory to serve (overrides config)."`
	Port int    `short:"p" help:"Server port (overrides config)."`
}

func (s *ServeCmd) Run(_ *Global, cli *CLI) error {
	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadOrDefault(cli.Config)
	if err != nil {
		return err
	}
	applyOverrides(cfg, "", s.Dest, s.Port)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer gracefulShutdown(a)

	if err := a.runAndRecord(sigctx, "connect"); err != nil {
		return err
	}

	<-sigctx.Done()
	slog.Info("shutting down")
	return nil
}

// WatchCmd runs file-system watchers (and the optional rebuild schedule)
// until signaled.
type WatchCmd struct {
	Source string `short:"s" help:"Source directory to watch (overrides config)."`
}

func (w *WatchCmd) Run(_ *Global, cli *CLI) error {
	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadOrDefault(cli.Config)
	if err != nil {
		return err
	}
	applyOverrides(cfg, w.Source, "", 0)
	// Watch without serve has no server session to notify.
	cfg.Server.LiveReload = false

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer gracefulShutdown(a)

	if err := a.runAndRecord(sigctx, "watch"); err != nil {
		return err
	}

	<-sigctx.Done()
	slog.Info("shutting down")
	return nil
}
