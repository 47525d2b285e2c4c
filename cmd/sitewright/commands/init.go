package commands

import (
	"context"
	"log/slog"

	"github.com/sitewright/sitewright/internal/config"
	"github.com/sitewright/sitewright/internal/scaffold"
)

// InitCmd initializes a new project: the example config plus either the
// built-in source skeleton or a cloned starter template.
type InitCmd struct {
	Force    bool   `help:"Overwrite an existing configuration file."`
	Template string `help:"Git URL of a starter template to clone instead of the built-in skeleton."`
	Dir      string `arg:"" optional:"" default:"." help:"Project directory."`
}

func (i *InitCmd) Run(_ *Global, cli *CLI) error {
	if i.Template != "" {
		slog.Info("cloning starter template", "url", i.Template, "dir", i.Dir)
		return scaffold.CloneTemplate(context.Background(), i.Template, i.Dir)
	}

	if err := config.Init(cli.Config, i.Force); err != nil {
		return err
	}
	if err := scaffold.WriteSkeleton(i.Dir); err != nil {
		return err
	}
	slog.Info("project initialized", "config", cli.Config, "dir", i.Dir)
	return nil
}
