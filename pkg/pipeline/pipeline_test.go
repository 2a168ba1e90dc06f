package pipeline

import (
	"strings"
	"testing"

	"github.com/matzehuels/streettype/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"dataurl", false},
		{"json", false},
		{"svg", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"png", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"png", "pdf"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"sans", false},
		{"serif", false},
		{"mono", false},
		{"script", false},
		{"decorative", false},
		{"monospace", true}, // folder name, not a key
		{"gothic", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateCase(t *testing.T) {
	for _, c := range []string{"", "as-is", "upper", "lower"} {
		if err := ValidateCase(c); err != nil {
			t.Errorf("ValidateCase(%q) should pass: %v", c, err)
		}
	}
	if err := ValidateCase("title"); !errors.Is(err, errors.ErrCodeInvalidCase) {
		t.Errorf("ValidateCase(title) = %v, want INVALID_CASE", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Text: "hello"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Style != DefaultStyle {
		t.Errorf("Style should be %s, got %s", DefaultStyle, opts.Style)
	}
	if opts.Location != DefaultLocation {
		t.Errorf("Location should be %s, got %s", DefaultLocation, opts.Location)
	}
	if opts.Case != string(DefaultCase) {
		t.Errorf("Case should be %s, got %s", DefaultCase, opts.Case)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("Size should be %dx%d, got %dx%d", DefaultWidth, DefaultHeight, opts.Width, opts.Height)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("Formats should be [png], got %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown style", Options{Text: "a", Style: "gothic"}, errors.ErrCodeInvalidStyle},
		{"traversal location", Options{Text: "a", Location: "../etc"}, errors.ErrCodeInvalidLocation},
		{"bad case", Options{Text: "a", Case: "title"}, errors.ErrCodeInvalidCase},
		{"bad format", Options{Text: "a", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative width", Options{Text: "a", Width: -1}, errors.ErrCodeInvalidInput},
		{"huge height", Options{Text: "a", Height: MaxDimension + 1}, errors.ErrCodeInvalidInput},
		{"negative letter height", Options{Text: "a", LetterHeight: -3}, errors.ErrCodeInvalidInput},
		{"margin wider than canvas", Options{Text: "a", Width: 30}, errors.ErrCodeInvalidInput},
		{"text too long", Options{Text: strings.Repeat("x", MaxTextLength+1)}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Text: "Hi!", Case: "upper"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalStyle := opts.Style
	originalWidth := opts.Width
	originalFormats := opts.FormatList()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Style != originalStyle {
		t.Error("Style changed on second call")
	}
	if opts.Width != originalWidth {
		t.Error("Width changed on second call")
	}
	if opts.FormatList() != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("Formats should be [png], got %v", opts.Formats)
	}
	if opts.LetterHeight != 0 {
		t.Errorf("LetterHeight should stay 0 (natural size), got %d", opts.LetterHeight)
	}
}

func TestCanvasConfig(t *testing.T) {
	opts := Options{Width: 640, Height: 200, LetterHeight: 90}
	cfg := opts.CanvasConfig()

	if cfg.Width != 640 || cfg.Height != 200 || cfg.LetterHeight != 90 {
		t.Errorf("CanvasConfig = %dx%d letter %d", cfg.Width, cfg.Height, cfg.LetterHeight)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("CanvasConfig should be valid: %v", err)
	}
}

func TestFormatList(t *testing.T) {
	opts := Options{Formats: []string{"png", "json", "dataurl"}}
	if got := opts.FormatList(); got != "dataurl,json,png" {
		t.Errorf("FormatList = %q", got)
	}
	if opts.Formats[0] != "png" {
		t.Error("FormatList must not reorder Formats")
	}
}
