package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/sitepack/internal/assets"
	"github.com/wolfeidau/sitepack/internal/logger"
)

// ScriptsCmd reads a site's metafile and lists the script tags a page needs.
type ScriptsCmd struct {
	SiteFlags `embed:""`

	WorkDir string `help:"directory the site trees are resolved against" default:"." env:"SITEPACK_WORKDIR" type:"path"`
	Site    string `arg:"" help:"site name"`
	Bundle  string `arg:"" help:"bundle key, e.g. home-index"`
}

func (c *ScriptsCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = logger.Setup(globals.Debug).WithContext(ctx)
	return c.run(ctx, os.Stdout)
}

func (c *ScriptsCmd) run(ctx context.Context, w io.Writer) error {
	cfgs, err := c.Resolve(ctx)
	if err != nil {
		return err
	}

	cfg, err := findSite(cfgs, c.Site)
	if err != nil {
		return err
	}

	entry, ok := cfg.Entries[c.Bundle]
	if !ok {
		return fmt.Errorf("site %q has no bundle %q", c.Site, c.Bundle)
	}

	conf := assets.DefaultConfig()
	conf.WorkingDir = c.WorkDir
	pipeline := assets.New(conf)
	if err := pipeline.LoadMetadata(cfg); err != nil {
		return err
	}

	scripts, _, err := pipeline.LoadScripts(cfg.Name, entry)
	if err != nil {
		return err
	}

	for _, s := range scripts {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
