package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitewright.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run       RunCmd       `cmd:"" default:"withargs" help:"Clean, build, serve and watch (the default pipeline)"`
	Clean     CleanCmd     `cmd:"" help:"Delete destination directory contents"`
	Copy      CopyCmd      `cmd:"" aliases:"copyhtml" help:"Copy markup and static files to the destination"`
	Transform TransformCmd `cmd:"" aliases:"copyjs" help:"Transform sources (Markdown to HTML) into the destination"`
	Serve     ServeCmd     `cmd:"" aliases:"connect" help:"Serve the destination with live reload"`
	Watch     WatchCmd     `cmd:"" help:"Run tasks bound to file-system changes"`
	Init      InitCmd      `cmd:"" help:"Initialize a new project (config plus starter sources)"`
	History   HistoryCmd   `cmd:"" help:"List recent run invocations from the history store"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
