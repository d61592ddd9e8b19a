// Package registry implements the plugin registry: an in-memory, append-only
// catalog of discovered plugins, answering "which plugin fits this address,
// given a required mode?" by pattern matching and scoring.
package registry

import (
	"github.com/jnproject/jn/pkg/pattern"
	"github.com/jnproject/jn/pkg/plugin"
)

// entry pairs a plugin with its precompiled match set, so patterns are
// compiled once at registration rather than on every lookup.
type entry struct {
	info    plugin.Info
	matches pattern.MatchSet
}

// Registry holds the catalog. The zero value is ready to use. Registration
// order is preserved and used to break scoring ties.
type Registry struct {
	entries []entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register appends info to the catalog, compiling its match patterns into
// one disjunctive MatchSet. Duplicate names within a tier are tolerated:
// equal scores keep registration order, so the earlier registration wins
// Find, and both remain visible in FindAll and All, so diagnostic listings
// stay honest.
func (r *Registry) Register(info plugin.Info) {
	info = info.WithDefaults()
	var ms pattern.MatchSet
	for _, raw := range info.Matches {
		ms = append(ms, pattern.Compile(raw)...)
	}
	r.entries = append(r.entries, entry{info: info, matches: ms})
}

// Match is one scored candidate returned by FindAll.
type Match struct {
	Info          plugin.Info
	Score         int
	MatchedSource string
}

// Find returns the single best-scoring plugin supporting mode whose match
// patterns match address, or (zero value, false) if none match.
func (r *Registry) Find(address string, mode plugin.Mode) (Match, bool) {
	all := r.FindAll(address, mode)
	if len(all) == 0 {
		return Match{}, false
	}
	return all[0], true
}

// FindAll returns every plugin supporting mode whose match patterns match
// address, sorted by descending score (ties keep first-seen order), for
// diagnostic listing.
func (r *Registry) FindAll(address string, mode plugin.Mode) []Match {
	var candidates []Match
	for _, e := range r.entries {
		if !e.info.SupportsMode(mode) {
			continue
		}
		ok, matched := e.matches.Match(address)
		if !ok {
			continue
		}
		score := e.info.Tier.Priority() + e.info.Language.Priority() + len(matched)
		candidates = append(candidates, Match{Info: e.info, Score: score, MatchedSource: matched})
	}
	stableSortByScoreDesc(candidates)
	return candidates
}

// All returns every registered plugin, in registration order, regardless of
// mode or address match, for "jn plugins list" diagnostics.
func (r *Registry) All() []plugin.Info {
	out := make([]plugin.Info, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.info)
	}
	return out
}

// stableSortByScoreDesc sorts by Score descending, preserving relative order
// of equal-scored elements (first-seen order, since they arrive already in
// registration order).
func stableSortByScoreDesc(matches []Match) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].Score > matches[j-1].Score; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}
