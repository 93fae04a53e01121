package sitegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Mode
		wantErr  bool
	}{
		{name: "unset", input: "", expected: ModeDevelopment},
		{name: "development", input: "development", expected: ModeDevelopment},
		{name: "production", input: "production", expected: ModeProduction},
		{name: "unknown", input: "staging", wantErr: true},
		{name: "wrong case", input: "Production", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, mode)
		})
	}
}

func TestModeFromEnvUnset(t *testing.T) {
	calls := 0
	mode, err := ModeFromEnv(func(key string) string {
		calls++
		require.Equal(t, ModeEnvVar, key)
		return ""
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	fam, err := LookupFamily("whirlsite")
	require.NoError(t, err)
	base, err := fam.Base(mode)
	require.NoError(t, err)
	require.Equal(t, ModeDevelopment, base.Mode())
}

func TestModeFromEnvProduction(t *testing.T) {
	mode, err := ModeFromEnv(func(string) string { return "production" })
	require.NoError(t, err)
	require.True(t, mode.Production())
}

func TestNewBaseValidation(t *testing.T) {
	valid := BaseSpec{SourceExt: "js", Filename: "[name].js"}

	tests := []struct {
		name   string
		mutate func(*BaseSpec)
		mode   Mode
	}{
		{name: "missing source ext", mutate: func(s *BaseSpec) { s.SourceExt = "" }},
		{name: "filename without name token", mutate: func(s *BaseSpec) { s.Filename = "bundle.js" }},
		{name: "bad rule pattern", mutate: func(s *BaseSpec) {
			s.Rules = []ModuleRule{{Pattern: "[", Use: []Transform{{Loader: "css-loader"}}}}
		}},
		{name: "bad exclude pattern", mutate: func(s *BaseSpec) {
			s.Rules = []ModuleRule{{Pattern: "**/*.js", Exclude: []string{"{"}, Use: []Transform{{Loader: "babel-loader"}}}}
		}},
		{name: "rule without transforms", mutate: func(s *BaseSpec) {
			s.Rules = []ModuleRule{{Pattern: "**/*.js"}}
		}},
		{name: "unnamed plugin", mutate: func(s *BaseSpec) { s.Plugins = []OutputPlugin{{Filename: "x"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			_, err := NewBase(ModeDevelopment, spec)
			require.ErrorIs(t, err, ErrInvalidBase)
		})
	}

	_, err := NewBase(Mode("fast"), valid)
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestNewBaseCopiesSpec(t *testing.T) {
	spec := BaseSpec{
		SourceExt:  "js",
		Filename:   "[name].js",
		Rules:      []ModuleRule{jsRule()},
		Aliases:    map[string]string{"os": "os-browserify/browser"},
		Extensions: []string{".js"},
	}
	base, err := NewBase(ModeDevelopment, spec)
	require.NoError(t, err)

	spec.Rules[0].Pattern = "changed"
	spec.Rules[0].Use[0].Options["presets"] = "changed"
	spec.Aliases["os"] = "changed"
	spec.Extensions[0] = "changed"

	require.Equal(t, "**/*.js", base.Rules()[0].Pattern)
	require.Equal(t, []any{"@babel/preset-env"}, base.Rules()[0].Use[0].Options["presets"])
	require.Equal(t, map[string]string{"os": "os-browserify/browser"}, base.Aliases())
	require.Equal(t, []string{".js"}, base.Extensions())
}

func TestMatchRule(t *testing.T) {
	fam, err := LookupFamily("chaisite")
	require.NoError(t, err)
	base, err := fam.Base(ModeDevelopment)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		loader  string
		matched bool
	}{
		{name: "svelte component", path: "chaisite/home/static/home/src/App.svelte", loader: "svelte-loader", matched: true},
		{name: "scss uses first stylesheet rule", path: "chaisite/home/static/home/src/main.scss", loader: "sass-loader", matched: true},
		{name: "plain css", path: "chaisite/home/static/home/src/main.css", loader: "css-loader", matched: true},
		{name: "javascript", path: "chaisite/home/static/home/src/index.js", loader: "babel-loader", matched: true},
		{name: "top level javascript", path: "index.js", loader: "babel-loader", matched: true},
		{name: "excluded dependency", path: "node_modules/svelte/index.js", matched: false},
		{name: "nested excluded dependency", path: "chaisite/node_modules/lib/a.js", matched: false},
		{name: "no rule", path: "chaisite/home/static/home/src/data.json", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := base.MatchRule(tt.path)
			require.Equal(t, tt.matched, ok)
			if !tt.matched {
				return
			}
			require.Equal(t, tt.loader, rule.Use[len(rule.Use)-1].Loader)
		})
	}
}

func TestMatchRuleFirstWins(t *testing.T) {
	base, err := NewBase(ModeDevelopment, BaseSpec{
		SourceExt: "js",
		Filename:  "[name].js",
		Rules: []ModuleRule{
			{Pattern: "**/vendor/*.js", Use: []Transform{{Loader: "raw"}}},
			{Pattern: "**/*.js", Use: []Transform{{Loader: "babel-loader"}}},
		},
	})
	require.NoError(t, err)

	rule, ok := base.MatchRule("src/vendor/lib.js")
	require.True(t, ok)
	require.Equal(t, "raw", rule.Use[0].Loader)

	rule, ok = base.MatchRule("src/lib.js")
	require.True(t, ok)
	require.Equal(t, "babel-loader", rule.Use[0].Loader)
}

func TestHotReloadFollowsMode(t *testing.T) {
	fam, err := LookupFamily("chaisite")
	require.NoError(t, err)

	dev, err := fam.Base(ModeDevelopment)
	require.NoError(t, err)
	prod, err := fam.Base(ModeProduction)
	require.NoError(t, err)

	devRule, ok := dev.MatchRule("a/App.svelte")
	require.True(t, ok)
	prodRule, ok := prod.MatchRule("a/App.svelte")
	require.True(t, ok)

	require.Equal(t, true, devRule.Use[0].Options["hotReload"])
	require.Equal(t, false, prodRule.Use[0].Options["hotReload"])
}

func TestPluginLookup(t *testing.T) {
	base := testBase(t)

	p, ok := base.Plugin(PluginExtractCSS)
	require.True(t, ok)
	require.Equal(t, "[name].bundle.css", p.Filename)

	_, ok = base.Plugin("minify")
	require.False(t, ok)
}
