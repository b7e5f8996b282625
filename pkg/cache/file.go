package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores registry responses on disk so repeated runs against the
// same manifest do not re-hit PyPI or OSV. Entries are JSON envelopes with
// an absolute expiry; a stale or unreadable entry is treated as a miss and
// removed.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-backed cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache root directory.
func (c *FileCache) Dir() string { return c.dir }

// envelope is the on-disk entry format. Expiry is stored as unix
// nanoseconds; zero means the entry never expires.
type envelope struct {
	Expires int64  `json:"expires"`
	Body    []byte `json:"body"`
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.entryPath(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Corrupt entry, drop it.
		_ = os.Remove(path)
		return nil, false, nil
	}
	if env.Expires > 0 && time.Now().UnixNano() > env.Expires {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return env.Body, true, nil
}

// Set writes the entry atomically: a rename makes it visible, so a
// concurrent Get never observes a half-written file.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	env := envelope{Body: data}
	if ttl > 0 {
		env.Expires = time.Now().Add(ttl).UnixNano()
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}

	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error { return nil }

// entryPath fans entries out over 256 subdirectories keyed by the first
// hash byte, keeping any single directory small.
func (c *FileCache) entryPath(key string) string {
	sum := Hash([]byte(key))
	return filepath.Join(c.dir, sum[:2], sum[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
