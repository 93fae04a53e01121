package assets

import (
	"context"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/sitepack/internal/sitegen"
)

func TestTransformsWith(t *testing.T) {
	defaults := DefaultTransforms()
	extended := defaults.With("svelte-loader", BabelLoader)

	require.Contains(t, extended, "svelte-loader")
	require.NotContains(t, defaults, "svelte-loader")
	require.Len(t, extended, len(defaults)+1)

	var empty Transforms
	require.Len(t, empty.With("css-loader", CSSLoader), 1)
}

func TestExtractCSS(t *testing.T) {
	withPlugin := generate(t, sitegen.ModeDevelopment, testSpec(), sitegen.SiteDescriptor{Name: "home", StaticRoot: "home"})[0]

	spec := testSpec()
	spec.Plugins = nil
	withoutPlugin := generate(t, sitegen.ModeDevelopment, spec, sitegen.SiteDescriptor{Name: "home", StaticRoot: "home"})[0]

	tests := []struct {
		name    string
		cfg     sitegen.ResolvedConfig
		loader  api.Loader
		wantErr error
	}{
		{name: "css input", cfg: withPlugin, loader: api.LoaderCSS},
		{name: "missing plugin", cfg: withoutPlugin, loader: api.LoaderCSS, wantErr: ErrMissingPlugin},
		{name: "non css input", cfg: withPlugin, loader: api.LoaderJS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ExtractCSS(context.Background(), TransformInput{
				Path:     "style.css",
				Contents: "a{}",
				Loader:   tt.loader,
				Config:   tt.cfg,
			})
			if tt.loader != api.LoaderCSS || tt.wantErr != nil {
				require.Error(t, err)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, "a{}", out.Contents)
			require.Equal(t, api.LoaderCSS, out.Loader)
		})
	}
}

func TestLoadersSetEsbuildLoader(t *testing.T) {
	out, err := CSSLoader(context.Background(), TransformInput{Contents: "a{}"})
	require.NoError(t, err)
	require.Equal(t, api.LoaderCSS, out.Loader)

	out, err = BabelLoader(context.Background(), TransformInput{Contents: "let a = 1"})
	require.NoError(t, err)
	require.Equal(t, api.LoaderJS, out.Loader)
	require.Equal(t, "let a = 1", out.Contents)
}

func TestSassLoaderMissingBinary(t *testing.T) {
	_, err := SassLoader(context.Background(), TransformInput{
		Path:     "/tmp/main.scss",
		Contents: "$c: red; a { color: $c; }",
		Options:  map[string]any{"implementation": "/nonexistent/sass"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "/nonexistent/sass failed")
}

func TestRunTool(t *testing.T) {
	out, err := runTool(context.Background(), "cat", nil, "piped")
	require.NoError(t, err)
	require.Equal(t, "piped", out)
}
