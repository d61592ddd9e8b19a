package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnproject/jn/pkg/plugin"
)

func TestWatcherInvalidatesCacheOnChange(t *testing.T) {
	dir := t.TempDir()
	pluginPath := filepath.Join(dir, "csv-reader")
	require.NoError(t, os.WriteFile(pluginPath, []byte("#!/bin/sh\n"), 0o755))
	mtime, err := StatMTime(afero.NewOsFs(), pluginPath)
	require.NoError(t, err)

	fs := afero.NewOsFs()
	c := New(fs, filepath.Join(dir, "plugins.json"))
	require.NoError(t, c.Save([]plugin.Info{{Name: "csv", Matches: []string{"csv"}, Path: pluginPath, MTime: mtime}}))
	require.True(t, c.IsValid())

	w, err := NewWatcher(c, []plugin.Dir{{Path: dir}}, nil)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new-plugin"), []byte("x"), 0o755))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if exists, _ := afero.Exists(fs, c.path); !exists {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	assert.False(t, fileExists(fs, c.path))
}

func fileExists(fs afero.Fs, path string) bool {
	exists, _ := afero.Exists(fs, path)
	return exists
}
