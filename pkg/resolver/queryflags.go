package resolver

import "strings"

// queryFlags translates a raw query string ("key=value&key2=value2", as
// produced by the address parser) into CLI flags on the format plugin:
// underscores become hyphens, and each pair becomes "--key=value". The
// reserved "mode" key is extracted separately and not included in the
// returned flags.
func queryFlags(query string) (flags []string, mode string) {
	if query == "" {
		return nil, ""
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = strings.ReplaceAll(key, "_", "-")
		if key == "mode" {
			mode = value
			continue
		}
		flags = append(flags, "--"+key+"="+value)
	}
	return flags, mode
}

// cliPassthroughFlags forwards flags given on the reader's own command line
// (e.g. "--delimiter=,") to the format plugin verbatim.
func cliPassthroughFlags(readerFlags []string) []string {
	out := make([]string, len(readerFlags))
	copy(out, readerFlags)
	return out
}
