package discovery

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnproject/jn/pkg/plugin"
)

func TestDiscoverScriptPlugin(t *testing.T) {
	fs := afero.NewMemMapFs()
	script := `#!/usr/bin/env python3
# /// script
# [tool.jn]
# name = "csv"
# matches = [".*\\.csv$"]
# ///
`
	require.NoError(t, afero.WriteFile(fs, "/project/.jn/plugins/script/csv.py", []byte(script), 0o644))

	d := New(fs, nil)
	found := d.DiscoverAll(context.Background(), Config{
		Dirs: []plugin.Dir{
			{Path: "/project/.jn/plugins/script", Tier: plugin.TierProject, Language: plugin.LanguageScript},
		},
	})

	require.Len(t, found, 1)
	assert.Equal(t, "csv", found[0].Name)
	assert.Equal(t, plugin.TierProject, found[0].Tier)
	assert.Equal(t, "0.0.0", found[0].Version) // default applied
}

func TestDiscoverSkipsMalformedScriptSilently(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bundled/plugins/script/broken.py", []byte("no metadata here"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/bundled/plugins/script/good.py", []byte(`# /// script
# [tool.jn]
# name = "good"
# matches = ["^good"]
# ///
`), 0o644))

	d := New(fs, nil)
	found := d.DiscoverAll(context.Background(), Config{
		Dirs: []plugin.Dir{
			{Path: "/bundled/plugins/script", Tier: plugin.TierBundled, Language: plugin.LanguageScript},
		},
	})

	require.Len(t, found, 1)
	assert.Equal(t, "good", found[0].Name)
}

func TestDiscoverMissingDirYieldsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := New(fs, nil)
	found := d.DiscoverAll(context.Background(), Config{
		Dirs: []plugin.Dir{{Path: "/nowhere", Tier: plugin.TierUser, Language: plugin.LanguageScript}},
	})
	assert.Empty(t, found)
}

func TestDiscoverNativePlugin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("native probe test requires a POSIX shell")
	}
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "jsonl")
	script := "#!/bin/sh\necho '{\"name\":\"jsonl\",\"matches\":[\"^-$\"]}'\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o755))

	fs := afero.NewOsFs()
	d := New(fs, nil)
	found := d.DiscoverAll(context.Background(), Config{
		Dirs:    []plugin.Dir{{Path: dir, Tier: plugin.TierBundled, Language: plugin.LanguageNative}},
		Timeout: 2 * time.Second,
	})

	require.Len(t, found, 1)
	assert.Equal(t, "jsonl", found[0].Name)
	assert.Equal(t, plugin.LanguageNative, found[0].Language)
}

func TestDiscoverNativeNonZeroExitSkipsSilently(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("native probe test requires a POSIX shell")
	}
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "broken")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\nexit 1\n"), 0o755))

	fs := afero.NewOsFs()
	d := New(fs, nil)
	found := d.DiscoverAll(context.Background(), Config{
		Dirs:    []plugin.Dir{{Path: dir, Tier: plugin.TierBundled, Language: plugin.LanguageNative}},
		Timeout: 2 * time.Second,
	})
	assert.Empty(t, found)
}
