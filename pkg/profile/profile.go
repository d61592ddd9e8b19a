// Package profile implements the profile service and profile loader:
// locating named profiles across tiered directories and loading them with
// `_meta.json` ancestor inheritance, deep-merge, and environment-variable
// substitution.
//
// Directory scanning follows the same afero.Fs-walk, skip-on-error shape as
// this module's own pkg/discovery.
package profile

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Type is one of the three profile kinds the core recognises.
type Type string

const (
	TypeHTTP   Type = "http"
	TypeDuckDB Type = "duckdb"
	TypeFile   Type = "file"
)

// Extension returns the on-disk extension for this profile type: "json" for
// http and file, "sql" for duckdb.
func (t Type) Extension() string {
	if t == TypeDuckDB {
		return "sql"
	}
	return "json"
}

var (
	// ErrNotFound means no matching profile file exists across any tier.
	ErrNotFound = errors.New("profile: not found")
	// ErrMalformed means a located profile file failed to parse as JSON.
	ErrMalformed = errors.New("profile: malformed")
)

// Tier mirrors plugin.Tier's three levels for profile directories:
// project/user/bundled, with the same shadowing rule as plugin discovery.
type Tier string

const (
	TierProject Tier = "project"
	TierUser    Tier = "user"
	TierBundled Tier = "bundled"
)

// Root is one tiered profile directory root, e.g. "<project>/.jn/profiles".
type Root struct {
	Path string
	Tier Tier
}

// Identity is a profile's "<namespace>/<name>" identity within one type.
type Identity struct {
	Namespace string
	Name      string
	Type      Type
	Tier      Tier
	Path      string
}

// Service locates profiles across tiered roots.
type Service struct {
	fs    afero.Fs
	roots []Root
}

// NewService returns a Service scanning roots in the given order. Roots
// should be passed in ASCENDING tier priority (bundled, then user, then
// project): both List and Find let a later root's match overwrite an
// earlier one of the same identity, so passing roots lowest-priority-first
// makes the highest-priority root shadow the rest.
func NewService(fs afero.Fs, roots []Root) *Service {
	return &Service{fs: fs, roots: roots}
}

// List returns every profile identity of the given type across all tiers,
// with higher-tier definitions shadowing lower ones of the same
// "namespace/name".
func (s *Service) List(t Type) []Identity {
	seen := make(map[string]Identity)
	var order []string

	for _, root := range s.roots {
		typeDir := filepath.Join(root.Path, string(t))
		namespaces, err := afero.ReadDir(s.fs, typeDir)
		if err != nil {
			continue
		}
		for _, ns := range namespaces {
			if !ns.IsDir() {
				continue
			}
			nsDir := filepath.Join(typeDir, ns.Name())
			files, err := afero.ReadDir(s.fs, nsDir)
			if err != nil {
				continue
			}
			ext := "." + t.Extension()
			for _, f := range files {
				if f.IsDir() || filepath.Ext(f.Name()) != ext {
					continue
				}
				name := f.Name()[:len(f.Name())-len(ext)]
				key := ns.Name() + "/" + name
				if _, exists := seen[key]; !exists {
					order = append(order, key)
				}
				seen[key] = Identity{
					Namespace: ns.Name(),
					Name:      name,
					Type:      t,
					Tier:      root.Tier,
					Path:      filepath.Join(nsDir, f.Name()),
				}
			}
		}
	}

	sort.Strings(order)
	out := make([]Identity, 0, len(order))
	for _, key := range order {
		out = append(out, seen[key])
	}
	return out
}

// Find locates one profile by type, namespace, and name across tiers,
// returning the highest-priority match. Roots are scanned in the
// caller-supplied order and the LAST match found wins — see NewService for
// the required ascending-priority root ordering.
func (s *Service) Find(t Type, namespace, name string) (Identity, error) {
	var best Identity
	found := false
	ext := "." + t.Extension()
	for _, root := range s.roots {
		path := filepath.Join(root.Path, string(t), namespace, name+ext)
		if exists, _ := afero.Exists(s.fs, path); exists {
			best = Identity{Namespace: namespace, Name: name, Type: t, Tier: root.Tier, Path: path}
			found = true
		}
	}
	if !found {
		return Identity{}, ErrNotFound
	}
	return best, nil
}

// readJSON reads and parses a JSON file as a generic document.
func readJSON(fs afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ErrMalformed
	}
	return doc, nil
}
