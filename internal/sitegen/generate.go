// Package sitegen turns a list of site descriptors and one shared base
// configuration into independent, per-site build configurations.
//
// Shared data lives in a read-only BaseConfig referenced by every
// ResolvedConfig. Data derived per site (name, entries and output location)
// is owned by each ResolvedConfig and may be changed freely without
// affecting any other site.
package sitegen

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"regexp"
	"strings"
)

// DefaultBundle is the bundle built for a site that declares no bundles.
const DefaultBundle = "app"

// identPattern restricts site and bundle names to characters that are safe in
// file names and entry keys.
var identPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// SiteDescriptor describes one buildable application.
type SiteDescriptor struct {
	Name       string   `json:"name" yaml:"name"`
	StaticRoot string   `json:"staticRoot" yaml:"staticRoot"`
	Bundles    []string `json:"bundles,omitempty" yaml:"bundles,omitempty"`
}

// OutputSpec says where a site's compiled bundles are written.
type OutputSpec struct {
	Dir      string `json:"path" yaml:"path"`
	Filename string `json:"filename" yaml:"filename"`
}

// FilenameFor renders the filename template for a bundle key.
func (o OutputSpec) FilenameFor(key string) string {
	return strings.ReplaceAll(o.Filename, NameToken, key)
}

// ResolvedConfig is the complete build configuration for one site. The
// embedded BaseConfig is shared between sites and is read-only; Entries and
// Output belong to this site alone.
type ResolvedConfig struct {
	Name    string
	Entries map[string]string
	Output  OutputSpec
	*BaseConfig
}

// Clone returns a copy that shares only the read-only base.
func (c ResolvedConfig) Clone() ResolvedConfig {
	c.Entries = maps.Clone(c.Entries)
	return c
}

// Generate resolves one configuration per descriptor, preserving input order.
// Every descriptor is validated before anything is produced, so a failure
// never yields a partial set.
func Generate(sites []SiteDescriptor, base *BaseConfig) ([]ResolvedConfig, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base configuration", ErrInvalidDescriptor)
	}
	if len(sites) == 0 {
		return nil, ErrNoSites
	}

	seen := make(map[string]int, len(sites))
	for i, site := range sites {
		if err := validateDescriptor(site); err != nil {
			return nil, fmt.Errorf("site %d: %w", i, err)
		}
		if prev, ok := seen[site.Name]; ok {
			return nil, fmt.Errorf("%w: %q used by sites %d and %d", ErrDuplicateName, site.Name, prev, i)
		}
		seen[site.Name] = i
	}

	out := make([]ResolvedConfig, 0, len(sites))
	for _, site := range sites {
		out = append(out, resolve(site, base))
	}
	return out, nil
}

func resolve(site SiteDescriptor, base *BaseConfig) ResolvedConfig {
	siteDir := path.Join(base.Root(), site.Name, "static", site.StaticRoot)

	entries := make(map[string]string, max(len(site.Bundles), 1))
	if len(site.Bundles) == 0 {
		entries[site.Name] = entryPath(siteDir, DefaultBundle, base.SourceExt())
	}
	for _, bundle := range site.Bundles {
		entries[site.Name+"-"+bundle] = entryPath(siteDir, bundle, base.SourceExt())
	}

	return ResolvedConfig{
		Name:    site.Name,
		Entries: entries,
		Output: OutputSpec{
			Dir:      path.Join(siteDir, "dist"),
			Filename: base.Filename(),
		},
		BaseConfig: base,
	}
}

func entryPath(siteDir, bundle, ext string) string {
	return path.Join(siteDir, "src", bundle+"."+ext)
}

func validateDescriptor(site SiteDescriptor) error {
	if site.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	}
	if !validIdent(site.Name) {
		return fmt.Errorf("%w: name %q must contain only alphanumeric, dot, dash or underscore", ErrInvalidDescriptor, site.Name)
	}
	if err := validateStaticRoot(site.StaticRoot); err != nil {
		return fmt.Errorf("%w: site %q: %w", ErrInvalidDescriptor, site.Name, err)
	}

	bundles := make(map[string]struct{}, len(site.Bundles))
	for _, bundle := range site.Bundles {
		if !validIdent(bundle) {
			return fmt.Errorf("%w: site %q: invalid bundle name %q", ErrInvalidDescriptor, site.Name, bundle)
		}
		if _, dup := bundles[bundle]; dup {
			return fmt.Errorf("%w: site %q: bundle %q listed twice", ErrInvalidDescriptor, site.Name, bundle)
		}
		bundles[bundle] = struct{}{}
	}
	return nil
}

func validIdent(s string) bool {
	return identPattern.MatchString(s) && s != "." && s != ".."
}

func validateStaticRoot(root string) error {
	if root == "" {
		return errors.New("empty static root")
	}
	if strings.HasPrefix(root, "/") {
		return fmt.Errorf("static root %q must be relative", root)
	}
	for _, seg := range strings.Split(root, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("static root %q has an empty or relative segment", root)
		}
	}
	return nil
}
