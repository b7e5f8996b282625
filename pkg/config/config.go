// Package config loads tool configuration from a TOML file.
//
// Configuration is optional: every field has a default, and a missing
// file is not an error. The default location is
// $XDG_CONFIG_HOME/pinset/config.toml (falling back to
// ~/.config/pinset/config.toml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tkoester/pinset/pkg/errors"
)

// Config is the full tool configuration.
type Config struct {
	Registry Registry `toml:"registry"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

// Registry configures the package registry and advisory endpoints.
type Registry struct {
	PyPIURL string `toml:"pypi_url"` // empty selects the public PyPI API
	OSVURL  string `toml:"osv_url"`  // empty selects the public OSV API
}

// Cache configures the HTTP response cache.
type Cache struct {
	Backend string   `toml:"backend"` // "file" (default), "redis" or "none"
	Dir     string   `toml:"dir"`     // file backend directory, empty for the default
	TTL     Duration `toml:"ttl"`     // entry lifetime, default 24h
	Redis   Redis    `toml:"redis"`
}

// Redis configures the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"` // host:port, default "localhost:6379"
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Server configures the API server and its report store.
type Server struct {
	Addr     string `toml:"addr"`      // listen address, default ":8080"
	MongoURI string `toml:"mongo_uri"` // empty keeps reports in memory
	MongoDB  string `toml:"mongo_db"`  // database name, default "pinset"
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Cache: Cache{
			Backend: "file",
			TTL:     Duration{24 * time.Hour},
			Redis:   Redis{Addr: "localhost:6379"},
		},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pinset", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pinset", "config.toml")
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for name, url := range map[string]string{
		"registry.pypi_url": c.Registry.PyPIURL,
		"registry.osv_url":  c.Registry.OSVURL,
	} {
		if url == "" {
			continue
		}
		if err := errors.ValidateURL(url); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return fmt.Errorf("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	return nil
}

// CacheDir returns the configured file cache directory, defaulting to
// the user cache dir.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".pinset-cache"
	}
	return filepath.Join(dir, "pinset")
}

// Duration wraps time.Duration so TTLs can be written as "24h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
