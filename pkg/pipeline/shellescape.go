package pipeline

import (
	"errors"
	"strings"
)

// ErrUnsafeGlob is returned when a glob pattern contains a character outside
// the allow-list.
var ErrUnsafeGlob = errors.New("pipeline: glob pattern rejected by shell-escape allow-list")

// globAllowList is the set of characters a glob pattern may contain when it
// is passed UNQUOTED into a composed shell command: glob patterns are the
// one exception that must not be quoted, so they must be validated against
// an allow-list of safe characters before being passed unquoted.
const globAllowList = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_.-/*?[]!"

// ShellQuote single-quote-wraps s for safe interpolation into a POSIX shell
// command string, rewriting embedded single quotes as `'\''`. Every value
// derived from an address, profile document, environment variable, or user
// CLI flag must pass through this before being interpolated into a shell
// string.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ValidateGlobPattern checks pattern against the shell-safe allow-list,
// required before a glob pattern is passed unquoted into a shell command.
func ValidateGlobPattern(pattern string) error {
	for _, r := range pattern {
		if !strings.ContainsRune(globAllowList, r) {
			return ErrUnsafeGlob
		}
	}
	return nil
}

// ErrHeaderInjection is returned when an HTTP header value contains CR or
// LF, which could otherwise be used for HTTP response-splitting.
var ErrHeaderInjection = errors.New("pipeline: header value contains CR or LF")

// ValidateHeaderValue rejects header values that could be used for HTTP
// response-splitting.
func ValidateHeaderValue(value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return ErrHeaderInjection
	}
	return nil
}
