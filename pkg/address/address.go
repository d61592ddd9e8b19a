// Package address classifies a user-supplied address string into one of
// five kinds and extracts its structured parts.
package address

import "strings"

// Kind is one of the five address kinds jn recognises.
type Kind int

const (
	KindStdin Kind = iota
	KindFile
	KindURL
	KindProfile
	KindGlob
)

func (k Kind) String() string {
	switch k {
	case KindStdin:
		return "stdin"
	case KindFile:
		return "file"
	case KindURL:
		return "url"
	case KindProfile:
		return "profile"
	case KindGlob:
		return "glob"
	default:
		return "unknown"
	}
}

// compressionExtensions maps a terminal dot-extension to its compression
// tag.
var compressionExtensions = map[string]string{
	"gz":  "gzip",
	"bz2": "bzip2",
	"xz":  "xz",
	"zst": "zstd",
}

// Address is the immutable, parsed form of a user-supplied address string.
type Address struct {
	Raw string
	Kind Kind

	// Path is the normalized path: everything after the protocol and
	// before the format hint/query.
	Path string

	Protocol string // "http", "https", "s3", "gs", "gcs", "gdrive", "duckdb"

	// Format is the explicit "~format" override, if present.
	Format string

	// Compression is "gzip"|"bzip2"|"xz"|"zstd", or "" for none.
	Compression string

	// ProfileNamespace/ProfileName are set for Kind == KindProfile.
	ProfileNamespace string
	ProfileName      string

	// Query is the raw query string (everything after an unescaped '?'),
	// preserved verbatim including embedded '='.
	Query string
}

// Parse classifies raw into an Address. Parse never fails: every string
// produces some Address.
func Parse(raw string) Address {
	a := Address{Raw: raw}

	body, query := splitQuery(raw)

	switch {
	case body == "-" || strings.HasPrefix(body, "-~"):
		a.Kind = KindStdin
		if idx := strings.Index(body, "~"); idx >= 0 {
			a.Format = body[idx+1:]
		}
		a.Query = query
		return a

	case strings.HasPrefix(body, "@"):
		a.Kind = KindProfile
		rest := body[1:]
		ns, name := splitFirstUnescapedSlash(rest)
		a.ProfileNamespace = ns
		a.ProfileName = name
		a.Query = query
		return a

	case hasProtocol(body):
		proto, remainder := splitProtocol(body)
		a.Kind = KindURL
		a.Protocol = proto
		a.Path = remainder
		a.Query = query
		applyFormatAndCompression(&a, remainder)
		return a

	case hasGlobMeta(body):
		a.Kind = KindGlob
		a.Path = body
		a.Query = query
		applyFormatAndCompression(&a, body)
		return a

	default:
		a.Kind = KindFile
		a.Path = body
		a.Query = query
		applyFormatAndCompression(&a, body)
		return a
	}
}

// splitQuery splits on the first unescaped '?', returning the body and the
// raw query string (without the '?'). The query is preserved verbatim,
// including embedded '=' inside values.
func splitQuery(s string) (body, query string) {
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '?' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// splitFirstUnescapedSlash splits "ns/name/with/slashes" into ns and the
// remainder, splitting only on the first unescaped '/'.
func splitFirstUnescapedSlash(s string) (first, rest string) {
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '/' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func hasProtocol(s string) bool {
	slashIdx := strings.Index(s, "/")
	protoIdx := strings.Index(s, "://")
	if protoIdx < 0 {
		return false
	}
	if slashIdx < 0 {
		return true
	}
	// "://" must occur before any other '/': since "://" itself contains a
	// '/', the protocol marker must be found scanning left-to-right before
	// any *other* path separator appears. protoIdx points at the colon, so
	// when no '/' precedes "://" the first '/' is the one right after the
	// colon and protoIdx < slashIdx.
	return protoIdx <= slashIdx
}

func splitProtocol(s string) (proto, remainder string) {
	idx := strings.Index(s, "://")
	proto = s[:idx]
	remainder = s[idx+3:]
	return proto, remainder
}

func hasGlobMeta(s string) bool {
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '*' || c == '?' || c == '[' {
			return true
		}
	}
	return false
}

// applyFormatAndCompression strips a trailing "~format" segment (after the
// final '/' of path, not inside the query) and then inspects the terminal
// dot-extension for a compression tag.
func applyFormatAndCompression(a *Address, path string) {
	lastSlash := strings.LastIndex(path, "/")
	searchFrom := 0
	if lastSlash >= 0 {
		searchFrom = lastSlash + 1
	}
	finalSegment := path[searchFrom:]

	if idx := strings.Index(finalSegment, "~"); idx >= 0 {
		a.Format = finalSegment[idx+1:]
		finalSegment = finalSegment[:idx]
		path = path[:searchFrom] + finalSegment
		a.Path = path
	}

	ext := extensionOf(finalSegment)
	if tag, ok := compressionExtensions[ext]; ok {
		a.Compression = tag
	}
}

func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}

// EffectiveFormat returns the explicit "~format" override if present;
// otherwise it returns the file extension remaining after compression
// stripping, for the caller to validate against registered plugin
// patterns — the Address Parser itself has no notion of "registered".
func (a Address) EffectiveFormat() (format string, ok bool) {
	if a.Format != "" {
		return a.Format, true
	}
	name := a.Path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	ext := extensionOf(name)
	if ext == "" {
		return "", false
	}
	// If the only extension present was the compression suffix, it was
	// already stripped from a.Path-extension detection by applyFormat's
	// logic operating on the *original* final segment — but a.Path still
	// carries the compression extension, since only the format override
	// (~x) rewrites a.Path. Strip a trailing compression extension here so
	// "data.csv.gz" yields "csv", not "gz".
	if _, isCompression := compressionExtensions[ext]; isCompression {
		rest := name[:len(name)-len(ext)-1]
		ext = extensionOf(rest)
		if ext == "" {
			return "", false
		}
	}
	return ext, true
}

// String reconstructs a normalized address string for diagnostics.
func (a Address) String() string {
	var b strings.Builder
	switch a.Kind {
	case KindStdin:
		b.WriteString("-")
	case KindProfile:
		b.WriteString("@")
		b.WriteString(a.ProfileNamespace)
		b.WriteString("/")
		b.WriteString(a.ProfileName)
	case KindURL:
		b.WriteString(a.Protocol)
		b.WriteString("://")
		b.WriteString(a.Path)
	default:
		b.WriteString(a.Path)
	}
	if a.Format != "" {
		b.WriteString("~")
		b.WriteString(a.Format)
	}
	if a.Query != "" {
		b.WriteString("?")
		b.WriteString(a.Query)
	}
	return b.String()
}
