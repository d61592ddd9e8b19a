// Package jnerr defines the fatal error taxonomy surfaced to JN's CLI users.
//
// Recovered-locally errors (discovery probe failures, cache misses, undefined
// env substitutions) are not part of this taxonomy — they are logged and
// swallowed at their call site, never wrapped in a Kind.
package jnerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the fatal error categories a reader can exit on.
type Kind string

const (
	KindAddressUnresolvable  Kind = "address_unresolvable"
	KindProfileNotFound      Kind = "profile_not_found"
	KindMalformedProfile     Kind = "malformed_profile"
	KindMissingField         Kind = "missing_required_field"
	KindUnsupportedProtocol  Kind = "unsupported_protocol"
	KindUnsupportedCompress  Kind = "unsupported_compression"
	KindPluginSpawnFailed    Kind = "plugin_spawn_failed"
	KindHTTPError            Kind = "http_error"
	KindDNSError             Kind = "dns_error"
	KindShellEscapeViolation Kind = "shell_escape_violation"
	KindCacheVersionMismatch Kind = "cache_version_mismatch"
	KindNoMatch              Kind = "no_match"
)

// Error is a fatal, user-surfaced error. It always carries the offending
// address string (or another offending token) so the CLI can print it
// alongside a hint.
type Error struct {
	Kind    Kind
	Address string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Address)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s (hint: %s)", msg, e.Hint)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged, user-facing error.
func New(kind Kind, address string, err error) *Error {
	return &Error{Kind: kind, Address: address, Err: err}
}

// WithHint attaches a remediation hint, e.g. "use `~format` to specify".
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Is reports whether err, or any error it wraps, is an *Error of the given
// Kind (found via errors.As).
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
