// Package discovery implements plugin discovery: scanning tiered directories
// for plugin executables and scripts, probing native binaries for their
// metadata and parsing scripts' inline metadata blocks.
//
// Directory walking is tolerant of per-entry failures: a single unreadable
// or malformed plugin entry is skipped and logged rather than aborting the
// whole scan.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/jnproject/jn/internal/obslog"
	"github.com/jnproject/jn/internal/obsmetrics"
	"github.com/jnproject/jn/pkg/cache"
	"github.com/jnproject/jn/pkg/plugin"
	"github.com/jnproject/jn/pkg/scriptmeta"
)

const (
	// metaFlag is the single argument a native plugin is invoked with to
	// request its metadata.
	metaFlag = "--jn-meta"

	// maxMetaOutput caps how much of a native plugin's stdout is read.
	maxMetaOutput = 64 * 1024

	// maxScriptSize caps how much of a script plugin file is read before
	// feeding it to the inline-script metadata parser.
	maxScriptSize = 256 * 1024

	// defaultTimeout is the per-plugin metadata probe timeout.
	defaultTimeout = 5000 * time.Millisecond
)

// Config controls one discovery pass.
type Config struct {
	Dirs    []plugin.Dir
	Timeout time.Duration
}

// Discoverer scans plugin directories over an injected filesystem, so
// tests can run against afero.NewMemMapFs.
type Discoverer struct {
	fs  afero.Fs
	log *obslog.Logger
}

// New returns a Discoverer reading from fs.
func New(fs afero.Fs, log *obslog.Logger) *Discoverer {
	return &Discoverer{fs: fs, log: log}
}

// DiscoverAll scans every directory in cfg.Dirs and returns every
// successfully-constructed PluginInfo. Aggregate discovery always succeeds,
// possibly returning an empty list.
func (d *Discoverer) DiscoverAll(ctx context.Context, cfg Config) []plugin.Info {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	start := time.Now()
	var found []plugin.Info
	for _, dir := range cfg.Dirs {
		found = append(found, d.scanDir(ctx, dir, timeout)...)
	}
	obsmetrics.DiscoveryDuration(time.Since(start).Seconds())
	return found
}

func (d *Discoverer) scanDir(ctx context.Context, dir plugin.Dir, timeout time.Duration) []plugin.Info {
	entries, err := afero.ReadDir(d.fs, dir.Path)
	if err != nil {
		return nil // missing tier directory: not an error, just empty
	}

	var found []plugin.Info
	for _, entry := range entries {
		path := filepath.Join(dir.Path, entry.Name())

		var info plugin.Info
		var ok bool
		if dir.Language == plugin.LanguageNative {
			info, ok = d.probeNative(ctx, path, timeout)
		} else {
			info, ok = d.probeScript(path)
		}
		if !ok {
			continue
		}

		info.Tier = dir.Tier
		info.Language = dir.Language
		info.Path = path
		if mtime, err := cache.StatMTime(d.fs, path); err == nil {
			info.MTime = mtime
		}
		found = append(found, info.WithDefaults())
	}
	return found
}

// probeNative invokes path with --jn-meta, reads up to maxMetaOutput bytes
// of stdout, and parses it as JSON. Any failure (missing binary, non-zero
// exit, timeout, malformed JSON, oversized output) yields ok=false and is
// logged, never returned as an error: discovery failures are per-entry and
// silent.
func (d *Discoverer) probeNative(ctx context.Context, path string, timeout time.Duration) (plugin.Info, bool) {
	execPath := path
	if fi, err := d.fs.Stat(path); err == nil && fi.IsDir() {
		execPath = filepath.Join(path, "bin", fi.Name())
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, execPath, metaFlag)
	var out bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &out, n: maxMetaOutput}
	cmd.Stderr = io.Discard

	if err := cmd.Run(); err != nil {
		d.logSkip(path, "probe failed", err)
		obsmetrics.DiscoveryProbe("timeout_or_error")
		return plugin.Info{}, false
	}

	var info plugin.Info
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		d.logSkip(path, "malformed metadata json", err)
		obsmetrics.DiscoveryProbe("malformed")
		return plugin.Info{}, false
	}
	if info.Name == "" || len(info.Matches) == 0 {
		d.logSkip(path, "missing required fields", nil)
		obsmetrics.DiscoveryProbe("malformed")
		return plugin.Info{}, false
	}

	obsmetrics.DiscoveryProbe("ok")
	return info, true
}

// probeScript reads path (capped at maxScriptSize) and parses its inline
// metadata block.
func (d *Discoverer) probeScript(path string) (plugin.Info, bool) {
	f, err := d.fs.Open(path)
	if err != nil {
		d.logSkip(path, "open failed", err)
		obsmetrics.DiscoveryProbe("skipped")
		return plugin.Info{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxScriptSize))
	if err != nil {
		d.logSkip(path, "read failed", err)
		obsmetrics.DiscoveryProbe("skipped")
		return plugin.Info{}, false
	}

	meta, err := scriptmeta.Parse(string(data))
	if err != nil {
		d.logSkip(path, "inline metadata parse failed", err)
		obsmetrics.DiscoveryProbe("malformed")
		return plugin.Info{}, false
	}

	info := plugin.Info{}
	if name, ok := meta["name"].(string); ok {
		info.Name = name
	}
	if version, ok := meta["version"].(string); ok {
		info.Version = version
	}
	if matches, ok := meta["matches"].([]string); ok {
		info.Matches = matches
	}
	if role, ok := meta["role"].(string); ok {
		info.Role = plugin.Role(role)
	}
	if modes, ok := meta["modes"].([]string); ok {
		for _, m := range modes {
			info.Modes = append(info.Modes, plugin.Mode(m))
		}
	}
	if profileType, ok := meta["profile_type"].(string); ok {
		info.ProfileType = profileType
	}

	if info.Name == "" || len(info.Matches) == 0 {
		return plugin.Info{}, false
	}
	obsmetrics.DiscoveryProbe("ok")
	return info, true
}

func (d *Discoverer) logSkip(path, reason string, err error) {
	if d.log == nil {
		return
	}
	entry := d.log.Warn().Str("path", path).Str("reason", reason)
	if err != nil {
		entry = entry.Err(err)
	}
	entry.Msg("discovery: skipping plugin entry")
}

// limitedWriter discards writes past n bytes rather than erroring, so a
// chatty plugin can't block discovery; cmd.Run still completes normally.
type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return len(p), nil
	}
	if len(p) > l.n {
		p = p[:l.n]
	}
	n, err := l.w.Write(p)
	l.n -= n
	return len(p), err
}
