package commands

import (
	"context"

	"github.com/sitewright/sitewright/internal/config"
)

// CleanCmd deletes the destination directory contents.
type CleanCmd struct {
	Dest string `short:"d" help:"Destination directory (overrides config)."`
}

func (c *CleanCmd) Run(_ *Global, cli *CLI) error {
	return runSingleTask(cli.Config, "clean", "", c.Dest)
}

// CopyCmd copies markup and static files to the destination.
type CopyCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)."`
	Dest   string `short:"d" help:"Destination directory (overrides config)."`
}

func (c *CopyCmd) Run(_ *Global, cli *CLI) error {
	return runSingleTask(cli.Config, "copyhtml", c.Source, c.Dest)
}

// TransformCmd renders transformable sources (Markdown) into the destination.
type TransformCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)."`
	Dest   string `short:"d" help:"Destination directory (overrides config)."`
}

func (c *TransformCmd) Run(_ *Global, cli *CLI) error {
	return runSingleTask(cli.Config, "transform", c.Source, c.Dest)
}

// runSingleTask wires the app and runs one task to completion.
func runSingleTask(configPath, taskName, source, dest string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, source, dest, 0)
	// One-shot builds have no server session; nothing to notify.
	cfg.Server.LiveReload = false

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer gracefulShutdown(a)

	return a.runAndRecord(context.Background(), taskName)
}
