package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/wolfeidau/sitepack/internal/sitegen"
)

const tracerName = "github.com/wolfeidau/sitepack/internal/assets"

// Build compiles every configuration, at most Concurrency at a time. The
// first failure stops sites that have not started yet. Results are in the
// same order as cfgs.
func (p *Pipeline) Build(ctx context.Context, cfgs []sitegen.ResolvedConfig) ([]Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.config.Concurrency, 1))

	results := make([]Result, len(cfgs))
	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.BuildSite(gctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BuildSite runs esbuild for one site, writes its metafile and caches the
// parsed metadata.
func (p *Pipeline) BuildSite(ctx context.Context, cfg sitegen.ResolvedConfig) (Result, error) {
	log := zerolog.Ctx(ctx).With().Str("site", cfg.Name).Logger()
	attrs := metric.WithAttributes(attribute.String("site", cfg.Name), attribute.String("mode", cfg.Mode().String()))

	ctx, span := otel.Tracer(tracerName).Start(ctx, "assets.BuildSite",
		trace.WithAttributes(attribute.String("site", cfg.Name), attribute.Int("entries", len(cfg.Entries))))
	defer span.End()

	started := time.Now()
	p.metrics.BuildsTotal.Add(ctx, 1, attrs)

	res, err := p.buildSite(ctx, cfg, log)
	res.Duration = time.Since(started)
	p.metrics.BuildDuration.Record(ctx, float64(res.Duration.Milliseconds()), attrs)

	if err != nil {
		p.metrics.BuildErrorsTotal.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return Result{}, err
	}

	p.metrics.OutputFilesTotal.Add(ctx, int64(len(res.Outputs)), attrs)
	log.Info().Int("outputs", len(res.Outputs)).Dur("duration", res.Duration).Msg("Built site")
	return res, nil
}

func (p *Pipeline) buildSite(ctx context.Context, cfg sitegen.ResolvedConfig, log zerolog.Logger) (Result, error) {
	opts, err := BuildOptions(ctx, cfg, p.config)
	if err != nil {
		return Result{}, err
	}

	entryPoints := make([]string, 0, len(opts.EntryPointsAdvanced))
	for _, ep := range opts.EntryPointsAdvanced {
		entryPoints = append(entryPoints, ep.OutputPath)
	}
	log.Info().Strs("entrypoints", entryPoints).Str("outdir", opts.Outdir).Msg("Building assets")

	result := api.Build(opts)

	res := Result{Site: cfg.Name}
	for _, msg := range result.Warnings {
		log.Warn().Str("warning", formatMessage(msg)).Msg("Build warning")
		res.Warnings = append(res.Warnings, formatMessage(msg))
	}

	if len(result.Errors) > 0 {
		buildErr := &BuildError{Site: cfg.Name}
		for _, msg := range result.Errors {
			log.Error().Str("error", formatMessage(msg)).Msg("Build error")
			buildErr.Messages = append(buildErr.Messages, formatMessage(msg))
		}
		return Result{}, buildErr
	}

	// Write metafile
	metafilePath := filepath.Join(opts.Outdir, p.config.MetafileName)
	if err := os.WriteFile(metafilePath, []byte(result.Metafile), 0600); err != nil {
		return Result{}, fmt.Errorf("failed to write metafile: %w", err)
	}

	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return Result{}, fmt.Errorf("failed to parse metafile: %w", err)
	}

	for outputPath := range metadata.Outputs {
		res.Outputs = append(res.Outputs, outputPath)
	}
	sort.Strings(res.Outputs)

	for _, file := range res.Outputs {
		log.Debug().Str("file", file).Msg("Built file")
	}

	if p.config.Precompress {
		if err := precompress(opts.AbsWorkingDir, res.Outputs); err != nil {
			return Result{}, err
		}
	}

	p.mu.Lock()
	p.metadata[cfg.Name] = &metadata
	p.mu.Unlock()

	return res, nil
}

// LoadMetadata reads a previously written metafile for cfg from disk.
func (p *Pipeline) LoadMetadata(cfg sitegen.ResolvedConfig) error {
	metafilePath := filepath.Join(p.config.WorkingDir, filepath.FromSlash(cfg.Output.Dir), p.config.MetafileName)
	data, err := os.ReadFile(metafilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s has no %s", ErrNotBuilt, cfg.Name, metafilePath)
		}
		return err
	}

	var metadata BuildMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return fmt.Errorf("failed to parse metafile: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.metadata[cfg.Name] = &metadata
	return nil
}

// LoadScripts returns the ordered list of script paths needed for the given
// entrypoint of a site and the main entrypoint file path
func (p *Pipeline) LoadScripts(site, entryPointPath string) ([]string, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	metadata, ok := p.metadata[site]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotBuilt, site)
	}

	scripts := []string{}
	visited := make(map[string]bool)
	var entrypoint string

	// Find the output file for this entrypoint
	for outputPath, info := range metadata.Outputs {
		if info.EntryPoint == entryPointPath {
			entrypoint = "/" + outputPath
			scripts = append(scripts, entrypoint)
			visited[outputPath] = true
			addDependencies(metadata, info, &scripts, visited)
			return scripts, entrypoint, nil
		}
	}

	return nil, "", fmt.Errorf("%w: %s", ErrEntryNotFound, entryPointPath)
}

func addDependencies(metadata *BuildMetadata, output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*scripts = append(*scripts, "/"+imp.Path)

			if chunkInfo, exists := metadata.Outputs[imp.Path]; exists {
				addDependencies(metadata, chunkInfo, scripts, visited)
			}
		}
	}
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}
