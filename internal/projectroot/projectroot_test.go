package projectroot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOverrideWins(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "/explicit/root", Find(dir, "/explicit/root"))
}

func TestFindDotJNDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".jn"), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Equal(t, root, Find(nested, ""))
}

func TestFindFallsBackToStartDir(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, Find(dir, ""))
}
