package alphabet

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/streettype/pkg/errors"
)

const (
	// AssetRoot is the top-level folder of the asset tree.
	AssetRoot = "assets"

	// Category is the asset category holding street alphabets.
	Category = "Alphabet"

	// MaxVariants is the number of numbered variants probed per character.
	MaxVariants = 5
)

// Case suffixes of the style folders.
const (
	CaseUpper = "upper"
	CaseLower = "lower"
)

// AssetPath is the slash-separated path of a letterform image relative to the
// web root, e.g. "assets/Alphabet/cities/NYC/alphabet/A/sans-upper/01.jpg".
type AssetPath string

// String returns the path as a string.
func (p AssetPath) String() string { return string(p) }

// styleFolders maps style keys to folder names on disk.
var styleFolders = map[string]string{
	"sans":       "sans",
	"serif":      "serif",
	"mono":       "monospace",
	"script":     "script",
	"decorative": "decorative",
}

// Styles returns the supported style keys in sorted order.
func Styles() []string {
	keys := make([]string, 0, len(styleFolders))
	for k := range styleFolders {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// StyleFolder returns the folder name for a style key.
func StyleFolder(style string) (string, bool) {
	dir, ok := styleFolders[style]
	return dir, ok
}

// ValidateStyle reports an INVALID_STYLE error for unknown style keys.
func ValidateStyle(style string) error {
	if _, ok := styleFolders[style]; !ok {
		return errors.New(errors.ErrCodeInvalidStyle, "unknown style key: %s (must be one of: %s)",
			style, strings.Join(Styles(), ", "))
	}
	return nil
}

// IsAlphanumeric reports whether ch is in [A-Za-z0-9]. Only these characters
// have letterform assets.
func IsAlphanumeric(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}

// ResolvePath builds the asset path of variant (1-based) of ch in the given
// style and city.
//
// It fails with INVALID_CHARACTER for characters outside [A-Za-z0-9], with
// INVALID_STYLE for unknown style keys, and with INVALID_LOCATION or
// INVALID_INPUT for unusable cities or variant numbers. The result is a pure
// function of the inputs.
func ResolvePath(ch rune, style, location string, variant int) (AssetPath, error) {
	if !IsAlphanumeric(ch) {
		return "", errors.New(errors.ErrCodeInvalidCharacter, "unsupported character: %q", ch)
	}
	dir, ok := styleFolders[style]
	if !ok {
		return "", ValidateStyle(style)
	}
	if err := errors.ValidateLocation(location); err != nil {
		return "", err
	}
	if variant < 1 || variant > MaxVariants {
		return "", errors.New(errors.ErrCodeInvalidInput, "variant %d out of range 1-%d", variant, MaxVariants)
	}

	letter := unicode.ToUpper(ch)
	caseType := CaseLower
	if ch == letter {
		caseType = CaseUpper
	}

	return AssetPath(strings.Join([]string{
		AssetRoot,
		Category,
		"cities",
		location,
		"alphabet",
		string(letter),
		dir + "-" + caseType,
		fmt.Sprintf("%02d.jpg", variant),
	}, "/")), nil
}

// LocationsDir is the folder holding one subfolder per city.
func LocationsDir() string {
	return AssetRoot + "/" + Category + "/cities"
}
