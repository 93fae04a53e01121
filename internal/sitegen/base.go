package sitegen

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// NameToken is the placeholder every filename template must carry so bundles
// of one site never overwrite each other.
const NameToken = "[name]"

// Transform is one step of a module rule's transform chain.
type Transform struct {
	Loader  string         `json:"loader" yaml:"loader"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// ModuleRule pairs a file pattern with the transform chain applied to matching files.
// Like webpack loaders, the chain runs last to first.
type ModuleRule struct {
	Pattern string      `json:"test" yaml:"test"`
	Exclude []string    `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Use     []Transform `json:"use" yaml:"use"`
}

// Matches reports whether the slash separated path is selected by the rule.
func (r ModuleRule) Matches(path string) bool {
	ok, err := doublestar.Match(r.Pattern, path)
	if err != nil || !ok {
		return false
	}
	for _, ex := range r.Exclude {
		if skip, _ := doublestar.Match(ex, path); skip {
			return false
		}
	}
	return true
}

// OutputPlugin is a post-processing step applied to generated output.
type OutputPlugin struct {
	Name     string `json:"name" yaml:"name"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// BaseSpec is the mutable template used to construct a BaseConfig.
type BaseSpec struct {
	// Root is the directory all site trees live under, e.g. "chaisite"
	Root string
	// SourceExt is the extension of bundle entry files, without the dot
	SourceExt string
	// Filename is the output filename template, must contain [name]
	Filename   string
	Rules      []ModuleRule
	Aliases    map[string]string
	Extensions []string
	MainFields []string
	Plugins    []OutputPlugin
	Externals  []string
}

// BaseConfig is the shared, read-only configuration every site inherits.
// All accessors return copies, so nothing handed out can alter the base.
type BaseConfig struct {
	mode       Mode
	root       string
	sourceExt  string
	filename   string
	rules      []ModuleRule
	aliases    map[string]string
	extensions []string
	mainFields []string
	plugins    []OutputPlugin
	externals  []string
}

// NewBase validates spec and freezes a copy of it together with the build mode.
func NewBase(mode Mode, spec BaseSpec) (*BaseConfig, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if spec.SourceExt == "" || strings.Contains(spec.SourceExt, "/") {
		return nil, fmt.Errorf("%w: source extension %q", ErrInvalidBase, spec.SourceExt)
	}
	if !strings.Contains(spec.Filename, NameToken) {
		return nil, fmt.Errorf("%w: filename template %q must contain %s", ErrInvalidBase, spec.Filename, NameToken)
	}
	for i, rule := range spec.Rules {
		if !doublestar.ValidatePattern(rule.Pattern) {
			return nil, fmt.Errorf("%w: rule %d has invalid pattern %q", ErrInvalidBase, i, rule.Pattern)
		}
		for _, ex := range rule.Exclude {
			if !doublestar.ValidatePattern(ex) {
				return nil, fmt.Errorf("%w: rule %d has invalid exclude %q", ErrInvalidBase, i, ex)
			}
		}
		if len(rule.Use) == 0 {
			return nil, fmt.Errorf("%w: rule %d (%s) has no transforms", ErrInvalidBase, i, rule.Pattern)
		}
	}
	for i, p := range spec.Plugins {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: output plugin %d has no name", ErrInvalidBase, i)
		}
	}

	return &BaseConfig{
		mode:       mode,
		root:       spec.Root,
		sourceExt:  spec.SourceExt,
		filename:   spec.Filename,
		rules:      cloneRules(spec.Rules),
		aliases:    maps.Clone(spec.Aliases),
		extensions: slices.Clone(spec.Extensions),
		mainFields: slices.Clone(spec.MainFields),
		plugins:    slices.Clone(spec.Plugins),
		externals:  slices.Clone(spec.Externals),
	}, nil
}

func (b *BaseConfig) Mode() Mode        { return b.mode }
func (b *BaseConfig) Root() string      { return b.root }
func (b *BaseConfig) SourceExt() string { return b.sourceExt }
func (b *BaseConfig) Filename() string  { return b.filename }

func (b *BaseConfig) Rules() []ModuleRule { return cloneRules(b.rules) }

func (b *BaseConfig) Aliases() map[string]string { return maps.Clone(b.aliases) }

func (b *BaseConfig) Alias(name string) (string, bool) {
	v, ok := b.aliases[name]
	return v, ok
}

func (b *BaseConfig) Extensions() []string    { return slices.Clone(b.extensions) }
func (b *BaseConfig) MainFields() []string    { return slices.Clone(b.mainFields) }
func (b *BaseConfig) Plugins() []OutputPlugin { return slices.Clone(b.plugins) }
func (b *BaseConfig) Externals() []string     { return slices.Clone(b.externals) }

// Plugin looks up an output plugin by name.
func (b *BaseConfig) Plugin(name string) (OutputPlugin, bool) {
	for _, p := range b.plugins {
		if p.Name == name {
			return p, true
		}
	}
	return OutputPlugin{}, false
}

// MatchRule returns the first rule selecting path. Rule order is significant.
func (b *BaseConfig) MatchRule(path string) (ModuleRule, bool) {
	for _, r := range b.rules {
		if r.Matches(path) {
			return cloneRule(r), true
		}
	}
	return ModuleRule{}, false
}

func cloneRules(rules []ModuleRule) []ModuleRule {
	if rules == nil {
		return nil
	}
	out := make([]ModuleRule, len(rules))
	for i, r := range rules {
		out[i] = cloneRule(r)
	}
	return out
}

func cloneRule(r ModuleRule) ModuleRule {
	out := ModuleRule{
		Pattern: r.Pattern,
		Exclude: slices.Clone(r.Exclude),
		Use:     make([]Transform, len(r.Use)),
	}
	for i, t := range r.Use {
		out.Use[i] = Transform{Loader: t.Loader, Options: cloneOptions(t.Options)}
	}
	return out
}

func cloneOptions(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneOptions(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
