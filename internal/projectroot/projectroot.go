// Package projectroot locates the project tier boundary used by plugin
// discovery and profile lookup: "<project>/.jn/...".
//
// Detection walks up from a starting directory looking for a repository
// root via go-git's PlainOpenWithOptions with DetectDotGit set, rather than
// a hand-rolled ".git" stat loop. A directory containing ".jn" directly
// always wins over git-based detection, since a project may use jn without
// being a git repository at all.
package projectroot

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Find returns the project root for a search starting at dir. It tries,
// in order: an explicit override, the nearest ancestor containing a ".jn"
// directory, the nearest git working-tree root (via go-git), and finally
// dir itself as a last resort so callers always get a usable root.
func Find(dir string, override string) string {
	if override != "" {
		return override
	}

	if root := findDotJN(dir); root != "" {
		return root
	}

	if repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true}); err == nil {
		if wt, err := repo.Worktree(); err == nil {
			return wt.Filesystem.Root()
		}
	}

	return dir
}

func findDotJN(start string) string {
	current := start
	for {
		candidate := filepath.Join(current, ".jn")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}
