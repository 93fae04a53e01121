package sitegen

import (
	"fmt"
	"path"
	"sort"
)

// Family is a group of sites built with one shared base configuration.
type Family struct {
	Name  string
	Sites []SiteDescriptor
	spec  func(Mode) BaseSpec
}

// Base builds the family's shared configuration for mode.
func (f Family) Base(mode Mode) (*BaseConfig, error) {
	return NewBase(mode, f.spec(mode))
}

var families = map[string]func() Family{
	"chaisite":  chaisite,
	"whirlsite": whirlsite,
}

// Families lists the built-in family names in sorted order.
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupFamily returns a fresh copy of the named built-in family.
func LookupFamily(name string) (Family, error) {
	fn, ok := families[name]
	if !ok {
		return Family{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownFamily, name, Families())
	}
	return fn(), nil
}

func chaisite() Family {
	return Family{
		Name: "chaisite",
		Sites: []SiteDescriptor{
			{Name: "chaisite", StaticRoot: "common", Bundles: []string{"app"}},
			{Name: "home", StaticRoot: "home", Bundles: []string{"index", "docs"}},
			{Name: "docs", StaticRoot: "docs", Bundles: []string{"guide"}},
		},
		spec: func(mode Mode) BaseSpec {
			return BaseSpec{
				Root:       "chaisite",
				SourceExt:  "js",
				Filename:   "[name].bundle.js",
				Rules:      []ModuleRule{svelteRule(mode), scssRule(), cssRule(), jsRule()},
				Aliases:    browserAliases("chaisite"),
				Extensions: []string{".mjs", ".js", ".svelte"},
				MainFields: []string{"svelte", "browser", "module", "main"},
				Plugins:    []OutputPlugin{{Name: PluginExtractCSS, Filename: "[name].bundle.css"}},
				Externals:  []string{"webpack"},
			}
		},
	}
}

func whirlsite() Family {
	return Family{
		Name: "whirlsite",
		Sites: []SiteDescriptor{
			{Name: "whirlsite", StaticRoot: "common"},
		},
		spec: func(mode Mode) BaseSpec {
			return BaseSpec{
				Root:       "whirlsite",
				SourceExt:  "js",
				Filename:   "[name].bundle.js",
				Rules:      []ModuleRule{svelteRule(mode), cssRule(), jsRule()},
				Aliases:    browserAliases("whirlsite"),
				Extensions: []string{".mjs", ".js", ".svelte"},
				MainFields: []string{"svelte", "browser", "module", "main"},
				Plugins:    []OutputPlugin{{Name: PluginExtractCSS, Filename: "[name].bundle.css"}},
				Externals:  []string{"webpack"},
			}
		},
	}
}

// PluginExtractCSS writes stylesheets imported by a bundle to their own file.
const PluginExtractCSS = "extract-css"

func svelteRule(mode Mode) ModuleRule {
	return ModuleRule{
		Pattern: "**/*.svelte",
		Use: []Transform{{
			Loader: "svelte-loader",
			Options: map[string]any{
				"emitCss":         true,
				"hotReload":       !mode.Production(),
				"cascade":         false,
				"preprocess":      "svelte-preprocess",
				"compilerOptions": map[string]any{"hydratable": true},
			},
		}},
	}
}

func scssRule() ModuleRule {
	return ModuleRule{
		Pattern: "**/*.scss",
		Use:     []Transform{{Loader: PluginExtractCSS}, {Loader: "css-loader"}, {Loader: "sass-loader"}},
	}
}

func cssRule() ModuleRule {
	return ModuleRule{
		Pattern: "**/*.css",
		Use:     []Transform{{Loader: PluginExtractCSS}, {Loader: "css-loader"}},
	}
}

func jsRule() ModuleRule {
	return ModuleRule{
		Pattern: "**/*.js",
		Exclude: []string{"**/node_modules/**"},
		Use: []Transform{{
			Loader: "babel-loader",
			Options: map[string]any{
				"presets": []any{"@babel/preset-env"},
				"plugins": []any{
					"@babel/plugin-proposal-class-properties",
					"@babel/plugin-transform-runtime",
					"prismjs",
				},
			},
		}},
	}
}

// browserAliases substitutes node core modules with their browser ports and
// points "common" at the shared component directory of root.
func browserAliases(root string) map[string]string {
	return map[string]string{
		"svelte":    "./" + path.Join("node_modules", "svelte"),
		"util":      "util",
		"sys":       "util",
		"path":      "path-browserify",
		"vm":        "vm-browserify",
		"stream":    "stream-browserify",
		"http":      "stream-http",
		"os":        "os-browserify/browser",
		"buffer":    "buffer",
		"https":     "https-browserify",
		"assert":    "assert",
		"crypto":    "crypto-browserify",
		"constants": "constants-browserify",
		"common":    "./" + path.Join(root, root, "static", "common", "src", "components"),
	}
}

