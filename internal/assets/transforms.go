package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/sitepack/internal/sitegen"
)

// TransformInput is what a transform receives: the file, the output of the
// previous transform in the chain and the options from the module rule.
type TransformInput struct {
	Path     string
	Contents string
	Loader   api.Loader
	Options  map[string]any
	Config   sitegen.ResolvedConfig
}

type TransformOutput struct {
	Contents string
	// Loader tells esbuild how to parse Contents, api.LoaderNone keeps the default for the file extension
	Loader api.Loader
}

type TransformFunc func(ctx context.Context, in TransformInput) (TransformOutput, error)

// Transforms maps loader names used in module rules to implementations.
type Transforms map[string]TransformFunc

// DefaultTransforms registers the transforms that have a Go or CLI
// implementation. There is no svelte-loader; sites with svelte components
// need one registered with With.
func DefaultTransforms() Transforms {
	return Transforms{
		"css-loader":             CSSLoader,
		"babel-loader":           BabelLoader,
		"sass-loader":            SassLoader,
		sitegen.PluginExtractCSS: ExtractCSS,
	}
}

// With returns a copy of t with fn registered under name.
func (t Transforms) With(name string, fn TransformFunc) Transforms {
	out := maps.Clone(t)
	if out == nil {
		out = Transforms{}
	}
	out[name] = fn
	return out
}

// CSSLoader hands stylesheets to esbuild's css loader.
func CSSLoader(_ context.Context, in TransformInput) (TransformOutput, error) {
	return TransformOutput{Contents: in.Contents, Loader: api.LoaderCSS}, nil
}

// BabelLoader parses modern JavaScript, esbuild lowers it to the configured target.
func BabelLoader(_ context.Context, in TransformInput) (TransformOutput, error) {
	return TransformOutput{Contents: in.Contents, Loader: api.LoaderJS}, nil
}

// ExtractCSS keeps stylesheets out of the script bundle. It only checks that
// the configuration asks for extraction since esbuild writes the css file itself.
func ExtractCSS(_ context.Context, in TransformInput) (TransformOutput, error) {
	if _, ok := in.Config.Plugin(sitegen.PluginExtractCSS); !ok {
		return TransformOutput{}, fmt.Errorf("%w: %s", ErrMissingPlugin, sitegen.PluginExtractCSS)
	}
	if in.Loader != api.LoaderCSS {
		return TransformOutput{}, errors.New("extract-css expects css input, add css-loader after it in the rule")
	}
	return TransformOutput{Contents: in.Contents, Loader: api.LoaderCSS}, nil
}

// SassLoader compiles scss with the dart-sass command line tool. The
// "includePaths" option adds load paths, "implementation" overrides the binary.
func SassLoader(ctx context.Context, in TransformInput) (TransformOutput, error) {
	bin := "sass"
	if impl, ok := in.Options["implementation"].(string); ok && impl != "" {
		bin = impl
	}

	args := []string{"--stdin", "--no-source-map", "--load-path", filepath.Dir(in.Path)}
	if paths, ok := in.Options["includePaths"].([]any); ok {
		for _, p := range paths {
			if s, ok := p.(string); ok {
				args = append(args, "--load-path", s)
			}
		}
	}

	out, err := runTool(ctx, bin, args, in.Contents)
	if err != nil {
		return TransformOutput{}, err
	}
	return TransformOutput{Contents: out, Loader: api.LoaderCSS}, nil
}

// runTool pipes input through an external command and returns its stdout.
func runTool(ctx context.Context, bin string, args []string, input string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
