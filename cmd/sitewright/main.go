package main

import (
	"github.com/alecthomas/kong"

	"github.com/sitewright/sitewright/cmd/sitewright/commands"
	"github.com/sitewright/sitewright/internal/version"
)

func main() {
	cli := commands.CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("sitewright"),
		kong.Description("Watch, build and serve static site sources."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
