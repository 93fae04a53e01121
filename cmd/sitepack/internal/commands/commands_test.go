package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/sitepack/internal/sitegen"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     map[string]string
		want    sitegen.Mode
		wantErr error
	}{
		{name: "unset", want: sitegen.ModeDevelopment},
		{name: "from env", env: map[string]string{sitegen.ModeEnvVar: "production"}, want: sitegen.ModeProduction},
		{name: "flag overrides env", flag: "development", env: map[string]string{sitegen.ModeEnvVar: "production"}, want: sitegen.ModeDevelopment},
		{name: "invalid env", env: map[string]string{sitegen.ModeEnvVar: "staging"}, wantErr: sitegen.ErrInvalidMode},
		{name: "invalid flag", flag: "prod", wantErr: sitegen.ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := SiteFlags{Family: "chaisite", Mode: tt.flag}
			cfgs, err := flags.resolve(env(tt.env))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, cfgs)
				return
			}
			require.NoError(t, err)
			require.Len(t, cfgs, 3)
			for _, cfg := range cfgs {
				require.Equal(t, tt.want, cfg.Mode())
			}
		})
	}
}

func TestResolveUnknownFamily(t *testing.T) {
	flags := SiteFlags{Family: "nosuchsite"}
	_, err := flags.resolve(env(nil))
	require.ErrorIs(t, err, sitegen.ErrUnknownFamily)
}

func TestResolveManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "sites.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`sites:
  - name: blog
    staticRoot: blog
    bundles: [index, admin]
`), 0o600))

	flags := SiteFlags{Family: "chaisite", Manifest: manifest}
	cfgs, err := flags.resolve(env(nil))
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	require.Equal(t, "blog", cfgs[0].Name)
	require.Equal(t, map[string]string{
		"blog-index": "chaisite/blog/static/blog/src/index.js",
		"blog-admin": "chaisite/blog/static/blog/src/admin.js",
	}, cfgs[0].Entries)

	flags.Manifest = filepath.Join(dir, "missing.yaml")
	_, err = flags.resolve(env(nil))
	require.Error(t, err)
}

func TestFindSite(t *testing.T) {
	flags := SiteFlags{Family: "chaisite"}
	cfgs, err := flags.resolve(env(nil))
	require.NoError(t, err)

	cfg, err := findSite(cfgs, "docs")
	require.NoError(t, err)
	require.Equal(t, "docs", cfg.Name)

	_, err = findSite(cfgs, "blog")
	require.ErrorContains(t, err, `site "blog" not found`)
}

func TestWriteDocuments(t *testing.T) {
	flags := SiteFlags{Family: "whirlsite", Mode: "production"}
	cfgs, err := flags.resolve(env(nil))
	require.NoError(t, err)
	docs := []sitegen.Document{cfgs[0].Document()}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeDocuments(&buf, "json", docs))

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 1)
		require.Equal(t, "whirlsite", decoded[0]["name"])
		require.Equal(t, "production", decoded[0]["mode"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeDocuments(&buf, "yaml", docs))

		var decoded []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 1)
		require.Equal(t, "whirlsite", decoded[0]["name"])
	})

	t.Run("unsupported", func(t *testing.T) {
		require.Error(t, writeDocuments(&bytes.Buffer{}, "toml", docs))
	})
}

func TestBuildThenScripts(t *testing.T) {
	workDir := t.TempDir()
	src := filepath.Join(workDir, "whirlsite", "whirlsite", "static", "common", "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "app.js"), []byte("console.log('whirl')\n"), 0o600))

	flags := SiteFlags{Family: "whirlsite", Mode: "development"}
	ctx := context.Background()

	build := &BuildCmd{SiteFlags: flags, WorkDir: workDir, Concurrency: 1}
	require.NoError(t, build.Run(ctx, &Globals{Version: "test"}))
	require.FileExists(t, filepath.Join(workDir, "whirlsite/whirlsite/static/common/dist/whirlsite.bundle.js"))

	scripts := &ScriptsCmd{SiteFlags: flags, WorkDir: workDir, Site: "whirlsite", Bundle: "whirlsite"}
	var buf bytes.Buffer
	require.NoError(t, scripts.run(ctx, &buf))
	require.Equal(t, []string{"/whirlsite/whirlsite/static/common/dist/whirlsite.bundle.js"}, strings.Fields(buf.String()))

	scripts.Bundle = "whirlsite-admin"
	require.ErrorContains(t, scripts.run(ctx, &buf), `no bundle "whirlsite-admin"`)
}
