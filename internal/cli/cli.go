// Package cli implements the pinset command-line interface.
//
// This package provides commands for linting pinned requirements
// manifests, verifying pins against PyPI, auditing them against OSV
// advisory data, resolving and rendering dependency trees, bumping pins,
// and managing the HTTP response cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - lint: Check the manifest's structural rules
//   - verify: Check every pin exists on PyPI and is not yanked
//   - outdated: Compare pins against the latest releases
//   - audit: Check pins against OSV vulnerability data
//   - tree: Resolve and print the transitive dependency tree
//   - render: Generate SVG, PNG, or DOT dependency diagrams
//   - bump: Rewrite a pin to a newer version
//   - serve: Run the lint/audit HTTP API
//   - cache: Manage the HTTP response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/tkoester/pinset/pkg/cache"
	"github.com/tkoester/pinset/pkg/config"
	"github.com/tkoester/pinset/pkg/integrations/osv"
	"github.com/tkoester/pinset/pkg/integrations/pypi"
	"github.com/tkoester/pinset/pkg/manifest"
)

const (
	// appName is the application name used for directories and display.
	appName = "pinset"

	// defaultManifest is the file operated on when no path is given.
	defaultManifest = "requirements.txt"
)

// manifestArg returns the manifest path from the command arguments,
// falling back to requirements.txt in the working directory.
func manifestArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultManifest
}

// loadManifest parses the manifest the command operates on.
func loadManifest(args []string) (*manifest.Manifest, error) {
	path := manifestArg(args)
	m, err := manifest.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// newCacheBackend builds the cache backend selected by the config.
// Backend failures fall back to no caching rather than failing the
// command; the cache is an optimization, not a requirement. Falling
// back is logged so a dead shared redis does not go unnoticed.
func newCacheBackend(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache()
	}
	logger := loggerFromContext(ctx)
	if cfg.Cache.Backend == "redis" {
		c, err := cache.NewRedisCache(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err == nil {
			return c
		}
		logger.Warn("redis cache unavailable, falling back to file cache", "addr", cfg.Cache.Redis.Addr, "error", err)
	}
	c, err := cache.NewFileCache(cfg.CacheDir())
	if err != nil {
		logger.Warn("file cache unavailable, caching disabled", "dir", cfg.CacheDir(), "error", err)
		return cache.NewNullCache()
	}
	return c
}

// newPyPIClient builds a PyPI client from the config.
func newPyPIClient(cfg *config.Config, backend cache.Cache) *pypi.Client {
	return pypi.NewClient(backend, cfg.Registry.PyPIURL, cacheTTL(cfg))
}

// newOSVClient builds an OSV client from the config.
func newOSVClient(cfg *config.Config, backend cache.Cache) *osv.Client {
	return osv.NewClient(backend, cfg.Registry.OSVURL, cacheTTL(cfg))
}

func cacheTTL(cfg *config.Config) time.Duration {
	if cfg.Cache.TTL.Duration > 0 {
		return cfg.Cache.TTL.Duration
	}
	return 24 * time.Hour
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// today returns the current date the way bump comments record it.
func today() string {
	return time.Now().Format("2006-01-02")
}
