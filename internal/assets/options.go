package assets

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/sitepack/internal/sitegen"
)

// BuildOptions translates a resolved site configuration into esbuild options.
// Entry and output paths are made absolute against config.WorkingDir.
func BuildOptions(ctx context.Context, cfg sitegen.ResolvedConfig, config Config) (api.BuildOptions, error) {
	workDir, err := filepath.Abs(config.WorkingDir)
	if err != nil {
		return api.BuildOptions{}, fmt.Errorf("failed to resolve working dir: %w", err)
	}

	if err := checkPlugins(cfg); err != nil {
		return api.BuildOptions{}, err
	}

	keys := make([]string, 0, len(cfg.Entries))
	for key := range cfg.Entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	entryPoints := make([]api.EntryPoint, 0, len(keys))
	for _, key := range keys {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  filepath.Join(workDir, filepath.FromSlash(cfg.Entries[key])),
			OutputPath: stem(cfg.Output.FilenameFor(key)),
		})
	}

	mode := cfg.Mode()

	return api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		AbsWorkingDir:       workDir,
		Outdir:              filepath.Join(workDir, filepath.FromSlash(cfg.Output.Dir)),
		Bundle:              true,
		Write:               true,
		Metafile:            true,
		Format:              api.FormatIIFE,
		Target:              config.Target,
		LogLevel:            api.LogLevelSilent,
		Alias:               cfg.Aliases(),
		ResolveExtensions:   cfg.Extensions(),
		MainFields:          cfg.MainFields(),
		External:            cfg.Externals(),
		MinifyWhitespace:    mode.Production(),
		MinifyIdentifiers:   mode.Production(),
		MinifySyntax:        mode.Production(),
		Sourcemap:           cond(mode.Production(), api.SourceMapNone, api.SourceMapLinked),
		Define: map[string]string{
			"process.env.NODE_ENV": strconv.Quote(mode.String()),
		},
		Plugins: []api.Plugin{rulesPlugin(ctx, cfg, workDir, config.Transforms)},
	}, nil
}

// checkPlugins rejects output plugins esbuild has no equivalent for. esbuild
// always writes a bundle's stylesheets beside its script, so extract-css is
// only honoured when its filename lines up with the script filename.
func checkPlugins(cfg sitegen.ResolvedConfig) error {
	for _, p := range cfg.Plugins() {
		switch p.Name {
		case sitegen.PluginExtractCSS:
			if p.Filename == "" {
				continue
			}
			if stem(p.Filename) != stem(cfg.Output.Filename) {
				return fmt.Errorf("%w: %s filename %q must match output filename %q", ErrUnsupportedPlugin, p.Name, p.Filename, cfg.Output.Filename)
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedPlugin, p.Name)
		}
	}
	return nil
}

// rulesPlugin runs the first matching module rule's transform chain, last
// transform first, on every file esbuild loads. Files no rule selects are
// left to esbuild's own loaders.
func rulesPlugin(ctx context.Context, cfg sitegen.ResolvedConfig, workDir string, transforms Transforms) api.Plugin {
	return api.Plugin{
		Name: "module-rules",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "file"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				rel, err := filepath.Rel(workDir, args.Path)
				if err != nil {
					return api.OnLoadResult{}, nil
				}
				rule, ok := cfg.MatchRule(filepath.ToSlash(rel))
				if !ok {
					return api.OnLoadResult{}, nil
				}

				src, err := os.ReadFile(args.Path)
				if err != nil {
					return api.OnLoadResult{}, err
				}

				out := TransformOutput{Contents: string(src)}
				for i := len(rule.Use) - 1; i >= 0; i-- {
					step := rule.Use[i]
					fn, ok := transforms[step.Loader]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("%w: %s (rule %s)", ErrUnknownTransform, step.Loader, rule.Pattern)
					}
					out, err = fn(ctx, TransformInput{
						Path:     args.Path,
						Contents: out.Contents,
						Loader:   out.Loader,
						Options:  step.Options,
						Config:   cfg,
					})
					if err != nil {
						return api.OnLoadResult{}, fmt.Errorf("%s: %w", step.Loader, err)
					}
				}

				return api.OnLoadResult{
					Contents:   &out.Contents,
					Loader:     out.Loader,
					ResolveDir: filepath.Dir(args.Path),
				}, nil
			})
		},
	}
}

// stem strips the extension from a slash separated file name.
func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
