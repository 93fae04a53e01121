package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfeidau/sitepack/internal/assets"
	"github.com/wolfeidau/sitepack/internal/logger"
	"github.com/wolfeidau/sitepack/internal/telemetry"
)

type BuildCmd struct {
	SiteFlags `embed:""`

	WorkDir     string `help:"directory the site trees are resolved against" default:"." env:"SITEPACK_WORKDIR" type:"path"`
	Concurrency int    `help:"maximum number of sites compiled at once" default:"4" env:"SITEPACK_CONCURRENCY"`
	Precompress bool   `help:"write gzip copies of every output" default:"false" env:"SITEPACK_PRECOMPRESS"`

	// Telemetry configuration
	Tracing     bool    `help:"export traces and metrics over OTLP" default:"false" env:"SITEPACK_TRACING"`
	SampleRatio float64 `help:"fraction of builds traced" default:"1" env:"SITEPACK_TRACE_SAMPLE_RATIO"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	buildID := uuid.NewString()
	ctx = logger.WithBuild(ctx, log, buildID)

	log.Info().Str("version", globals.Version).Str("build_id", buildID).Bool("debug", globals.Debug).Msg("Starting build")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Options{
			ServiceName: "sitepack",
			Version:     globals.Version,
			SampleRatio: c.SampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	cfgs, err := c.Resolve(ctx)
	if err != nil {
		return err
	}

	conf := assets.DefaultConfig()
	conf.WorkingDir = c.WorkDir
	conf.Concurrency = c.Concurrency
	conf.Precompress = c.Precompress

	started := time.Now()
	results, err := assets.New(conf).Build(ctx, cfgs)
	if err != nil {
		return fmt.Errorf("failed to build %s sites: %w", c.Family, err)
	}

	outputs := 0
	for _, res := range results {
		outputs += len(res.Outputs)
	}

	log.Info().
		Str("build_id", buildID).
		Int("sites", len(results)).
		Int("outputs", outputs).
		Dur("duration", time.Since(started)).
		Msg("Build finished")

	return nil
}
