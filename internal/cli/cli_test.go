package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"github.com/tkoester/pinset/pkg/cache"
	"github.com/tkoester/pinset/pkg/config"
)

func TestNewCacheBackendDisabled(t *testing.T) {
	cfg := config.Default()

	if _, ok := newCacheBackend(context.Background(), cfg, true).(*cache.NullCache); !ok {
		t.Error("noCache should select the null cache")
	}

	cfg.Cache.Backend = "none"
	if _, ok := newCacheBackend(context.Background(), cfg, false).(*cache.NullCache); !ok {
		t.Error(`backend "none" should select the null cache`)
	}
}

func TestNewCacheBackendRedisFallbackWarns(t *testing.T) {
	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, charmlog.WarnLevel))

	cfg := config.Default()
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = "127.0.0.1:1" // nothing listens here
	cfg.Cache.Dir = t.TempDir()

	c := newCacheBackend(ctx, cfg, false)
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("fallback backend = %T, want *cache.FileCache", c)
	}
	if !strings.Contains(buf.String(), "redis cache unavailable") {
		t.Errorf("no fallback warning logged: %q", buf.String())
	}
}
