package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/sitepack/internal/logger"
	"github.com/wolfeidau/sitepack/internal/sitegen"
)

// ConfigCmd prints the resolved configurations without building anything.
type ConfigCmd struct {
	SiteFlags `embed:""`

	Format string `help:"output format" default:"json" enum:"json,yaml"`
	Site   string `help:"only print this site" default:""`
}

func (c *ConfigCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = logger.Setup(globals.Debug).WithContext(ctx)

	cfgs, err := c.Resolve(ctx)
	if err != nil {
		return err
	}

	if c.Site != "" {
		cfg, err := findSite(cfgs, c.Site)
		if err != nil {
			return err
		}
		cfgs = []sitegen.ResolvedConfig{cfg}
	}

	docs := make([]sitegen.Document, 0, len(cfgs))
	for _, cfg := range cfgs {
		docs = append(docs, cfg.Document())
	}

	return writeDocuments(os.Stdout, c.Format, docs)
}

func writeDocuments(w io.Writer, format string, docs []sitegen.Document) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
