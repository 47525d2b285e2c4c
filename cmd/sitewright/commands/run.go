package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitewright/sitewright/internal/config"
)

// RunCmd executes the default pipeline: clean, copy, transform, then keeps
// serving and watching until the process is signaled.
type RunCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)."`
	Dest   string `short:"d" help:"Destination directory (overrides config)."`
	Port   int    `short:"p" help:"Server port (overrides config)."`
}

func (r *RunCmd) Run(_ *Global, cli *CLI) error {
	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadOrDefault(cli.Config)
	if err != nil {
		return err
	}
	applyOverrides(cfg, r.Source, r.Dest, r.Port)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer gracefulShutdown(a)

	if err := a.runAndRecord(sigctx, "default"); err != nil {
		return err
	}

	<-sigctx.Done()
	slog.Info("shutting down")
	return nil
}

func applyOverrides(cfg *config.Config, source, dest string, port int) {
	if source != "" {
		cfg.Source = source
	}
	if dest != "" {
		cfg.Dest = dest
	}
	if port != 0 {
		cfg.Server.Port = port
	}
}

// gracefulShutdown tears the app down with a bounded grace period.
func gracefulShutdown(a *app) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.shutdown(ctx)
}
