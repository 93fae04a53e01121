package sitegen

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk form of a descriptor list:
//
//	sites:
//	  - name: home
//	    staticRoot: home
//	    bundles: [index, docs]
type Manifest struct {
	Sites []SiteDescriptor `yaml:"sites"`
}

// LoadManifest decodes a YAML manifest. Descriptor validation is left to Generate.
func LoadManifest(r io.Reader) ([]SiteDescriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoSites
		}
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if len(m.Sites) == 0 {
		return nil, ErrNoSites
	}
	return m.Sites, nil
}

// LoadManifestFile reads a YAML manifest from path.
func LoadManifestFile(path string) ([]SiteDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	sites, err := LoadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sites, nil
}
