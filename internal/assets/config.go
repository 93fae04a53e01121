package assets

import "github.com/evanw/esbuild/pkg/api"

type Config struct {
	// Directory that entry and output paths of resolved configurations are relative to
	WorkingDir string
	// Name of the metafile written into every site's output directory
	MetafileName string
	// Maximum number of sites compiled at once
	Concurrency int
	// Whether to write a gzip copy next to every output file
	Precompress bool
	// Language target for emitted JavaScript and CSS
	Target api.Target
	// Transforms available to module rules, keyed by loader name
	Transforms Transforms
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		WorkingDir:   ".",
		MetafileName: "meta.json",
		Concurrency:  4,
		Target:       api.ES2017,
		Transforms:   DefaultTransforms(),
	}
}
