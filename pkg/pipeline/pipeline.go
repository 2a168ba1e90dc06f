// Package pipeline provides the compose pipeline for streettype.
//
// This package implements the complete select → render → export pipeline
// used by the CLI, the interactive composer and the HTTP server. By
// centralizing this logic, every entry point applies the same defaults,
// validation and caching.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Select: apply the case option and pick a letterform for every
//     character (see [letters.Selector])
//  2. Render: lay the entries out on a canvas and encode the requested
//     formats (PNG, PNG data URL, JSON manifest)
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(resolver, cache, nil, logger)
//	opts := pipeline.Options{
//	    Text:     "Hi!",
//	    Style:    "sans",
//	    Location: "NYC",
//	    Case:     "upper",
//	    Formats:  []string{"png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streettype/pkg/alphabet"
	"github.com/matzehuels/streettype/pkg/cache"
	"github.com/matzehuels/streettype/pkg/canvas"
	"github.com/matzehuels/streettype/pkg/errors"
	"github.com/matzehuels/streettype/pkg/letters"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI and Server
// =============================================================================

const (
	// DefaultStyle is the default letterform style key.
	DefaultStyle = "sans"

	// DefaultLocation is the default city.
	DefaultLocation = "NYC"

	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = canvas.DefaultWidth

	// DefaultHeight is the default initial canvas height in pixels.
	DefaultHeight = canvas.DefaultHeight

	// MaxTextLength is the maximum number of characters per request.
	MaxTextLength = 500

	// MaxDimension bounds width, height and letter height.
	MaxDimension = 8192
)

// DefaultCase is the default case option.
const DefaultCase = letters.CaseAsIs

// Format constants for output formats.
const (
	FormatPNG     = "png"
	FormatDataURL = "dataurl"
	FormatJSON    = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:     true,
	FormatDataURL: true,
	FormatJSON:    true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the compose pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Select options
	Text     string `json:"text"`
	Style    string `json:"style,omitempty"`
	Location string `json:"location,omitempty"`
	Case     string `json:"case,omitempty"`
	Seed     uint64 `json:"seed,omitempty"` // 0 picks variants non-reproducibly

	// Render options
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	LetterHeight int      `json:"letter_height,omitempty"`
	Formats      []string `json:"formats,omitempty"`
	Refresh      bool     `json:"refresh,omitempty"` // Bypass the artifact cache

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Text is the text after applying the case option.
	Text string

	// Entries is the selected entry sequence, in text order.
	Entries []letters.Entry

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and count information.
	Stats Stats

	// CacheHit reports whether all artifacts came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	letters.Counts
	SelectTime time.Duration
	RenderTime time.Duration
}

// Manifest is the JSON artifact: the entry sequence with its render settings.
type Manifest struct {
	Text     string                  `json:"text"`
	Style    string                  `json:"style"`
	Location string                  `json:"location"`
	Width    int                     `json:"width"`
	Height   int                     `json:"height"`
	Entries  []letters.ManifestEntry `json:"entries"`
	Counts   letters.Counts          `json:"counts"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, dataurl, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style key is known.
func ValidateStyle(style string) error {
	return alphabet.ValidateStyle(style)
}

// ValidateCase checks that a case option is known.
func ValidateCase(c string) error {
	_, err := letters.ParseCase(c)
	return err
}

func validateDimension(name string, v int, allowZero bool) error {
	if v < 0 || v > MaxDimension || (v == 0 && !allowZero) {
		return errors.New(errors.ErrCodeInvalidInput, "%s must be between 1 and %d, got %d", name, MaxDimension, v)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSelect(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetSelectDefaults sets default values for letter selection.
func (o *Options) SetSelectDefaults() {
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Location == "" {
		o.Location = DefaultLocation
	}
	if o.Case == "" {
		o.Case = string(DefaultCase)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForSelect validates and sets defaults for letter selection.
func (o *Options) ValidateForSelect() error {
	o.SetSelectDefaults()
	if err := errors.ValidateText(o.Text, MaxTextLength); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if err := errors.ValidateLocation(o.Location); err != nil {
		return err
	}
	return ValidateCase(o.Case)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := validateDimension("width", o.Width, false); err != nil {
		return err
	}
	if err := validateDimension("height", o.Height, false); err != nil {
		return err
	}
	if err := validateDimension("letter_height", o.LetterHeight, true); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return canvas.DefaultConfig().WithSize(o.Width, o.Height).Validate()
}

// CaseOption returns the parsed case option.
func (o *Options) CaseOption() letters.CaseOption {
	c, _ := letters.ParseCase(o.Case)
	return c
}

// CanvasConfig returns the canvas configuration for these options.
func (o *Options) CanvasConfig() canvas.Config {
	cfg := canvas.DefaultConfig().WithSize(o.Width, o.Height)
	cfg.LetterHeight = o.LetterHeight
	return cfg
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Width:  o.Width,
		Height: o.Height,
	}
}

// RequestHash identifies the rendered content: the selected letterforms,
// a fingerprint of each loaded letter image, and every setting that changes
// the pixels. Two runs with the same hash produce the same artifacts, and a
// letterform replaced in place under the same path changes the hash.
func RequestHash(opts Options, entries []letters.Entry) string {
	images := make([]string, len(entries))
	for i, e := range entries {
		if l, ok := e.(letters.Letter); ok && l.Image != nil {
			images[i] = imageFingerprint(l.Image)
		}
	}
	data, _ := json.Marshal(struct {
		Entries      []letters.ManifestEntry `json:"entries"`
		Images       []string                `json:"images"`
		Style        string                  `json:"style"`
		Location     string                  `json:"location"`
		LetterHeight int                     `json:"letter_height"`
	}{letters.Manifest(entries), images, opts.Style, opts.Location, opts.LetterHeight})
	return cache.Hash(data)
}

// fingerprintGrid is the number of sampled pixels per axis.
const fingerprintGrid = 32

// imageFingerprint hashes the bounds of img and a grid of sampled pixels.
func imageFingerprint(img image.Image) string {
	b := img.Bounds()
	buf := fmt.Appendf(nil, "%d,%d,%d,%d;", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	if !b.Empty() {
		for gy := 0; gy < fingerprintGrid; gy++ {
			y := b.Min.Y + gy*b.Dy()/fingerprintGrid
			for gx := 0; gx < fingerprintGrid; gx++ {
				x := b.Min.X + gx*b.Dx()/fingerprintGrid
				r, g, bl, a := img.At(x, y).RGBA()
				buf = append(buf, byte(r>>8), byte(g>>8), byte(bl>>8), byte(a>>8))
			}
		}
	}
	return cache.Hash(buf)
}

// FormatList returns the formats as a comma-separated string for logs.
func (o *Options) FormatList() string {
	f := slices.Clone(o.Formats)
	slices.Sort(f)
	return strings.Join(f, ",")
}
