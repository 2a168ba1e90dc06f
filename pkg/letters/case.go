package letters

import (
	"strings"

	"github.com/matzehuels/streettype/pkg/errors"
)

// CaseOption controls case conversion before selection.
type CaseOption string

// Case options.
const (
	CaseAsIs  CaseOption = "as-is"
	CaseUpper CaseOption = "upper"
	CaseLower CaseOption = "lower"
)

// ParseCase validates a case option. The empty string means CaseAsIs.
func ParseCase(s string) (CaseOption, error) {
	switch CaseOption(s) {
	case "", CaseAsIs:
		return CaseAsIs, nil
	case CaseUpper, CaseLower:
		return CaseOption(s), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidCase, "invalid case: %q (must be one of: as-is, upper, lower)", s)
	}
}

// ApplyCase converts text according to opt.
func ApplyCase(text string, opt CaseOption) string {
	switch opt {
	case CaseUpper:
		return strings.ToUpper(text)
	case CaseLower:
		return strings.ToLower(text)
	default:
		return text
	}
}
