package profile

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const metaFileName = "_meta.json"

// Loader loads a profile document by Identity, applying `_meta.json`
// ancestor inheritance and optional environment substitution.
type Loader struct {
	fs            afero.Fs
	substituteEnv bool
}

// NewLoader returns a Loader. When substitute is true, environment
// substitution runs after merging.
func NewLoader(fs afero.Fs, substitute bool) *Loader {
	return &Loader{fs: fs, substituteEnv: substitute}
}

// Load reads id's profile file, collects every `_meta.json` from the
// namespace root down to the profile's own directory, deep-merges them
// root-first, merges the profile document on top, and optionally
// substitutes environment references.
func (l *Loader) Load(id Identity) (map[string]any, error) {
	doc, err := readJSON(l.fs, id.Path)
	if err != nil {
		return nil, err
	}

	ancestors, err := l.collectMetaAncestors(id)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	for _, ancestor := range ancestors {
		merged = DeepMerge(merged, ancestor)
	}
	merged = DeepMerge(merged, doc)

	if l.substituteEnv {
		merged = substituteEnv(merged)
	}
	return merged, nil
}

// collectMetaAncestors walks up from the profile's own directory to the
// namespace root, collecting any `_meta.json` files encountered, inclusive
// of both ends, and returns them in root-first order for merge precedence.
// A profile's Name may itself contain '/' (intermediate levels below the
// namespace), so the namespace root is found by walking up one directory
// per '/' in id.Name.
func (l *Loader) collectMetaAncestors(id Identity) ([]map[string]any, error) {
	dir := filepath.Dir(id.Path)

	namespaceRoot := dir
	for i := 0; i < strings.Count(id.Name, "/"); i++ {
		namespaceRoot = filepath.Dir(namespaceRoot)
	}

	var metaPaths []string
	for {
		metaPaths = append(metaPaths, filepath.Join(dir, metaFileName))
		if dir == namespaceRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	reverse(metaPaths)

	var docs []map[string]any
	for _, p := range metaPaths {
		exists, err := afero.Exists(l.fs, p)
		if err != nil || !exists {
			continue
		}
		doc, err := readJSON(l.fs, p)
		if err != nil {
			continue // a malformed _meta.json is skipped, not fatal
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
