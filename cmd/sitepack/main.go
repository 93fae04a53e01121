package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/sitepack/cmd/sitepack/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Build   commands.BuildCmd   `cmd:"" help:"Compile every site of a family"`
		Config  commands.ConfigCmd  `cmd:"" help:"Print the resolved per-site build configurations"`
		Scripts commands.ScriptsCmd `cmd:"" help:"List the scripts a built bundle needs, in load order"`
		Debug   bool                `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("sitepack"),
		kong.Description("Build configuration generator and compiler for multi-site front-ends."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
