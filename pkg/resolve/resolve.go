// Package resolve crawls the registry to build the dependency graph of
// a pinned manifest. Top-level pins are fetched at their exact pinned
// version; transitive packages are fetched at their latest release,
// since the manifest does not pin them.
package resolve

import (
	"context"
	"time"
)

const workers = 20

const (
	DefaultMaxDepth = 10             // Default maximum dependency depth
	DefaultMaxNodes = 500            // Default maximum packages to fetch
	DefaultCacheTTL = 24 * time.Hour // Default HTTP cache duration
)

// Package holds registry metadata for one package release.
type Package struct {
	Name         string   // Normalized package name
	Version      string   // Resolved version
	Dependencies []string // Direct runtime dependency names, normalized
	Summary      string   // Short description (may be empty)
	License      string   // License identifier (may be empty)
	Yanked       bool     // Whether the release was yanked
}

// Fetcher retrieves package metadata from a registry. An empty version
// selects the latest release. If refresh is true, cached data is bypassed.
type Fetcher interface {
	Fetch(ctx context.Context, name, version string, refresh bool) (*Package, error)
}

// Options configures dependency resolution behavior.
type Options struct {
	MaxDepth int                  // Maximum depth to traverse (default: 10)
	MaxNodes int                  // Maximum packages to fetch (default: 500)
	Refresh  bool                 // Bypass cache for fresh data
	Logger   func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}
