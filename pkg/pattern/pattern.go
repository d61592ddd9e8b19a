// Package pattern implements the small regex-dialect matcher plugins use to
// advertise which addresses they handle. It is deliberately not a general
// regex engine — the dialect is four shapes, matched by a hand-written
// scanner.
package pattern

import "strings"

// Kind identifies which of the four dialect shapes a Pattern is.
type Kind int

const (
	// KindPrefix is "^prefix": the address must start with prefix.
	KindPrefix Kind = iota
	// KindSuffixExt is ".*\.ext$": the address must end with the given
	// suffix, where the suffix body may contain \X escapes.
	KindSuffixExt
	// KindSuffix is "suffix$": the address must end with the literal suffix.
	KindSuffix
	// KindExact is the fallback: the address must equal the pattern exactly.
	KindExact
)

// Pattern is one compiled branch of the dialect (a disjunction is a slice
// of Patterns — see MatchSet.Match).
type Pattern struct {
	Kind Kind
	// Body is the literal text to match against, with escapes resolved
	// (\. -> ., etc). For KindPrefix this is the prefix; for KindSuffixExt
	// and KindSuffix this is the suffix.
	Body string
	// Source is the original branch text, used for specificity scoring (the
	// length of the matched pattern).
	Source string
}

// Compile parses a raw pattern string (possibly "a|b|c" alternation) into
// its branches. Compile never fails: any branch that matches none of the
// three recognized shapes becomes a KindExact match on its literal text —
// exact equality with the address.
func Compile(raw string) MatchSet {
	if raw == "" {
		return MatchSet{}
	}
	branches := splitAlternation(raw)
	set := make(MatchSet, 0, len(branches))
	for _, b := range branches {
		set = append(set, compileBranch(b))
	}
	return set
}

// splitAlternation splits on unescaped '|'.
func splitAlternation(raw string) []string {
	var branches []string
	var cur strings.Builder
	escaped := false
	for _, r := range raw {
		if escaped {
			cur.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			cur.WriteRune(r)
			escaped = true
			continue
		}
		if r == '|' {
			branches = append(branches, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	branches = append(branches, cur.String())
	return branches
}

func compileBranch(branch string) Pattern {
	switch {
	case strings.HasPrefix(branch, "^"):
		return Pattern{Kind: KindPrefix, Body: unescape(branch[1:]), Source: branch}
	case strings.HasPrefix(branch, ".*") && strings.HasSuffix(branch, "$"):
		body := branch[2 : len(branch)-1]
		return Pattern{Kind: KindSuffixExt, Body: unescape(body), Source: branch}
	case strings.HasSuffix(branch, "$"):
		body := branch[:len(branch)-1]
		return Pattern{Kind: KindSuffix, Body: unescape(body), Source: branch}
	default:
		return Pattern{Kind: KindExact, Body: unescape(branch), Source: branch}
	}
}

// unescape resolves single-character \X escapes (\. -> ., \$ -> $, etc),
// honoring literal backslash-escaped metacharacters.
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Match reports whether the address satisfies this single branch.
func (p Pattern) Match(address string) bool {
	switch p.Kind {
	case KindPrefix:
		return strings.HasPrefix(address, p.Body)
	case KindSuffixExt, KindSuffix:
		return strings.HasSuffix(address, p.Body)
	default:
		return address == p.Body
	}
}

// MatchSet is a disjunction of Patterns ("pattern1|pattern2|...").
// A zero-length MatchSet never matches.
type MatchSet []Pattern

// Match reports whether any branch matches, and if so the branch whose
// Source is longest among matching branches — used by the registry for
// specificity scoring.
func (ms MatchSet) Match(address string) (ok bool, matchedSource string) {
	best := -1
	for _, p := range ms {
		if p.Kind == KindExact && p.Body == "" {
			continue
		}
		if p.Match(address) {
			if len(p.Source) > best {
				best = len(p.Source)
				matchedSource = p.Source
				ok = true
			}
		}
	}
	return ok, matchedSource
}
