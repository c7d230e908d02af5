package errors

import (
	"sort"
	"strings"
	"unicode"
)

// ValidateColumn checks a 1-based column number from the configuration
// surface. The name is used in the error message (e.g. "tax_column").
func ValidateColumn(name string, col int) error {
	if col < 1 {
		return New(ErrCodeInvalidColumn, "%s must be >= 1 (columns are 1-based), got %d", name, col)
	}
	return nil
}

// ValidateDelta checks the delta tolerance, a non-negative percentage.
func ValidateDelta(delta int) error {
	if delta < 0 {
		return New(ErrCodeInvalidDelta, "delta must be >= 0, got %d", delta)
	}
	if delta > 100 {
		return New(ErrCodeInvalidDelta, "delta must be <= 100, got %d", delta)
	}
	return nil
}

// ValidateFormat checks that format is one of the valid formats.
func ValidateFormat(format string, valid map[string]bool) error {
	if !valid[format] {
		names := make([]string, 0, len(valid))
		for k := range valid {
			names = append(names, k)
		}
		sort.Strings(names)
		return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(names, ", "))
	}
	return nil
}

// ValidatePath validates an output path prefix.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

