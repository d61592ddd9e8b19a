// Package cache implements the plugin cache: a JSON envelope persisted to
// "<install>/cache/plugins.json", written with write-then-rename atomicity
// and validated by stat-ing every referenced plugin path against its
// recorded mtime. The filesystem is injected as an afero.Fs so tests can run
// against an in-memory filesystem.
package cache

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/jnproject/jn/pkg/plugin"
)

// schemaVersion is the envelope's "version" field. Bumped whenever the
// on-disk record shape changes; readers reject any other value outright.
const schemaVersion = 1

// ErrVersionMismatch signals a cache file whose schema version does not
// match the current constant; callers treat this as "no cache".
var ErrVersionMismatch = errors.New("cache: schema version mismatch")

// envelope is the on-disk record: `{ "version": N, "plugins": [...] }`.
type envelope struct {
	Version int           `json:"version"`
	Plugins []plugin.Info `json:"plugins"`
}

// Cache reads and writes the plugin cache file.
type Cache struct {
	fs   afero.Fs
	path string
}

// New returns a Cache backed by fs, persisting to path.
func New(fs afero.Fs, path string) *Cache {
	return &Cache{fs: fs, path: path}
}

// Load reads the cache file and validates every entry's path+mtime. Any
// error (missing file, malformed JSON, version mismatch, or a stale entry)
// is reported so the caller can fall back to rediscovery; Load itself never
// partially-trusts a cache — validity is all-or-nothing.
func (c *Cache) Load() ([]plugin.Info, error) {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Version != schemaVersion {
		return nil, ErrVersionMismatch
	}

	for _, p := range env.Plugins {
		valid, err := c.isEntryValid(p)
		if err != nil {
			return nil, err
		}
		if !valid {
			return nil, errors.New("cache: stale entry for " + p.Path)
		}
	}

	return env.Plugins, nil
}

func (c *Cache) isEntryValid(p plugin.Info) (bool, error) {
	info, err := c.fs.Stat(p.Path)
	if err != nil {
		return false, nil
	}
	return info.ModTime().Equal(p.MTime), nil
}

// IsValid reports whether every plugin entry's recorded path and mtime
// still matches the filesystem, without returning the parsed list.
func (c *Cache) IsValid() bool {
	plugins, err := c.Load()
	return err == nil && plugins != nil
}

// Save writes plugins to the cache file, via a temp file and atomic rename.
// On any write error the temp file is removed and the error is returned;
// callers never hard-fail on a Save error.
func (c *Cache) Save(plugins []plugin.Info) error {
	env := envelope{Version: schemaVersion, Plugins: plugins}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpPath := c.path + ".tmp"
	if err := afero.WriteFile(c.fs, tmpPath, data, 0o644); err != nil {
		_ = c.fs.Remove(tmpPath)
		return err
	}
	if err := c.fs.Rename(tmpPath, c.path); err != nil {
		_ = c.fs.Remove(tmpPath)
		return err
	}
	return nil
}

// Invalidate deletes the cache file. Errors are ignored.
func (c *Cache) Invalidate() {
	_ = c.fs.Remove(c.path)
}

// StatMTime returns the current mtime of path on fs, for callers building
// plugin.Info records during Discovery.
func StatMTime(fs afero.Fs, path string) (time.Time, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// DefaultPath returns "<installRoot>/cache/plugins.json".
func DefaultPath(installRoot string) string {
	return filepath.Join(installRoot, "cache", "plugins.json")
}
