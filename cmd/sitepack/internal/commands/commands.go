package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/sitepack/internal/sitegen"
	"github.com/wolfeidau/sitepack/internal/telemetry"
)

type Globals struct {
	Debug   bool
	Version string
}

// SiteFlags selects the site family, the descriptor list and the build mode.
type SiteFlags struct {
	Family   string `help:"built-in site family (chaisite, whirlsite)" default:"chaisite" env:"SITEPACK_FAMILY"`
	Manifest string `help:"YAML manifest replacing the family's built-in site list" default:"" env:"SITEPACK_MANIFEST"`
	Mode     string `help:"build mode (development or production), defaults to $NODE_ENV" default:""`
}

// Resolve generates one configuration per site. The build mode is read from
// the environment once, and only when --mode is not given.
func (f *SiteFlags) Resolve(ctx context.Context) ([]sitegen.ResolvedConfig, error) {
	log := zerolog.Ctx(ctx)
	metrics := telemetry.GetMetrics()

	cfgs, err := f.resolve(os.Getenv)
	if err != nil {
		metrics.GenerateErrorsTotal.Add(ctx, 1)
		return nil, err
	}
	metrics.ConfigsGeneratedTotal.Add(ctx, int64(len(cfgs)))

	log.Debug().
		Str("family", f.Family).
		Str("mode", cfgs[0].Mode().String()).
		Int("sites", len(cfgs)).
		Msg("Generated site configurations")

	return cfgs, nil
}

func (f *SiteFlags) resolve(getenv func(string) string) ([]sitegen.ResolvedConfig, error) {
	mode, err := f.mode(getenv)
	if err != nil {
		return nil, err
	}

	fam, err := sitegen.LookupFamily(f.Family)
	if err != nil {
		return nil, err
	}

	sites := fam.Sites
	if f.Manifest != "" {
		sites, err = sitegen.LoadManifestFile(f.Manifest)
		if err != nil {
			return nil, err
		}
	}

	base, err := fam.Base(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s base configuration: %w", fam.Name, err)
	}

	cfgs, err := sitegen.Generate(sites, base)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s configurations: %w", fam.Name, err)
	}
	return cfgs, nil
}

func (f *SiteFlags) mode(getenv func(string) string) (sitegen.Mode, error) {
	if f.Mode != "" {
		return sitegen.ParseMode(f.Mode)
	}
	return sitegen.ModeFromEnv(getenv)
}

// findSite returns the configuration named site.
func findSite(cfgs []sitegen.ResolvedConfig, site string) (sitegen.ResolvedConfig, error) {
	for _, cfg := range cfgs {
		if cfg.Name == site {
			return cfg, nil
		}
	}
	names := make([]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		names = append(names, cfg.Name)
	}
	return sitegen.ResolvedConfig{}, fmt.Errorf("site %q not found (known: %v)", site, names)
}
