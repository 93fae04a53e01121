package assets

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfeidau/sitepack/internal/telemetry"
)

var (
	// ErrUnknownTransform indicates a module rule names a transform with no registered implementation
	ErrUnknownTransform = errors.New("unknown transform")
	// ErrMissingPlugin indicates a transform depends on an output plugin the configuration does not declare
	ErrMissingPlugin = errors.New("missing output plugin")
	// ErrUnsupportedPlugin indicates an output plugin the bundler cannot honour
	ErrUnsupportedPlugin = errors.New("unsupported output plugin")
	// ErrNotBuilt indicates metadata was requested for a site that has not been built
	ErrNotBuilt = errors.New("assets not built yet")
	// ErrEntryNotFound indicates the entry point is not present in the build metadata
	ErrEntryNotFound = errors.New("entrypoint not found in metadata")
)

// BuildError carries every error esbuild reported for one site.
type BuildError struct {
	Site     string
	Messages []string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("esbuild failed for %s with %d errors: %s", e.Site, len(e.Messages), strings.Join(e.Messages, "; "))
}

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	Bytes      int          `json:"bytes"`
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
	CSSBundle  string       `json:"cssBundle,omitempty"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Result summarises one site's compile.
type Result struct {
	Site     string
	Outputs  []string
	Warnings []string
	Duration time.Duration
}

// Pipeline compiles resolved site configurations with esbuild and keeps the
// resulting metadata so scripts can be looked up per entry point.
type Pipeline struct {
	config   Config
	metadata map[string]*BuildMetadata
	metrics  *telemetry.Metrics
	mu       sync.RWMutex
}

// New creates a new asset pipeline with the given configuration
func New(config Config) *Pipeline {
	if config.Transforms == nil {
		config.Transforms = DefaultTransforms()
	}
	if config.MetafileName == "" {
		config.MetafileName = "meta.json"
	}
	return &Pipeline{
		config:   config,
		metadata: make(map[string]*BuildMetadata),
		metrics:  telemetry.GetMetrics(),
	}
}
