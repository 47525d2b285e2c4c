package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/sitewright/sitewright/internal/config"
	swerrors "github.com/sitewright/sitewright/internal/errors"
	"github.com/sitewright/sitewright/internal/history"
)

// HistoryCmd lists recent run invocations from the history store.
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum number of runs to list."`
}

func (h *HistoryCmd) Run(_ *Global, cli *CLI) error {
	cfg, err := config.LoadOrDefault(cli.Config)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return swerrors.ConfigError("history store not configured (set history.path)")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	fmt.Printf("%-20s  %-12s  %-9s  %5s  %8s  %s\n", "STARTED", "TASK", "STATE", "FILES", "DURATION", "ERROR")
	for _, r := range records {
		fmt.Printf("%-20s  %-12s  %-9s  %5d  %7dms  %s\n",
			r.StartedAt.Format(time.DateTime), r.Task, r.State, r.Files, r.DurationMS, r.Error)
	}
	return nil
}
