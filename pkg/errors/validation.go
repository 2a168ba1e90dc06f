package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// locationRegex matches city folder names such as "NYC", "London" or "sao-paulo".
var locationRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateLocation validates a city location code before it becomes a path
// segment of an asset path.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - Letters, digits, '-' and '_' only (this also rules out traversal)
func ValidateLocation(location string) error {
	if location == "" {
		return New(ErrCodeInvalidLocation, "location cannot be empty")
	}
	if len(location) > 64 {
		return New(ErrCodeInvalidLocation, "location too long (max 64 characters)")
	}
	if !locationRegex.MatchString(location) {
		return New(ErrCodeInvalidLocation, "invalid location: %q", location)
	}
	return nil
}

// ValidatePath validates a relative asset path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
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

// ValidateText validates the user text submitted for rendering.
func ValidateText(text string, maxRunes int) error {
	if n := len([]rune(text)); maxRunes > 0 && n > maxRunes {
		return New(ErrCodeInvalidInput, "text too long (%d characters, max %d)", n, maxRunes)
	}
	for _, r := range text {
		if r == '\x00' {
			return New(ErrCodeInvalidInput, "text contains null bytes")
		}
	}
	return nil
}
