package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxInputBytes bounds the size of any snapshot the pipeline accepts, whether
// read from a file or received over the network.
// The support graph is built pairwise, so very large inputs are slow.
const MaxInputBytes = 4 << 20

// ValidateFormat checks that format is one of the allowed output formats.
// Matching is case-insensitive.
func ValidateFormat(format string, allowed []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateBackend checks that a cache backend name is known.
func ValidateBackend(name string, allowed []string) error {
	if !slices.Contains(allowed, name) {
		return New(ErrCodeInvalidBackend, "unknown cache backend %q (want one of %s)", name, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateInput checks a raw snapshot before parsing. It rejects empty input,
// input over MaxInputBytes, and control characters other than line breaks and
// tabs.
func ValidateInput(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(ErrCodeInvalidInput, "snapshot is empty")
	}
	if len(data) > MaxInputBytes {
		return New(ErrCodeInputTooLarge, "snapshot too large (%d bytes, max %d)", len(data), MaxInputBytes)
	}
	for _, r := range string(data) {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "snapshot contains control character %q", r)
		}
	}
	return nil
}
