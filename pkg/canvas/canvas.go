// Package canvas lays out letter entries and draws them onto a raster canvas.
//
// A [Renderer] holds the current entry sequence and redraws on demand: once
// per [Renderer.RenderLetters] or [Renderer.Resize] call. Letters with an
// image are drawn as pictures; every other entry is drawn as text with the
// Go Regular font. Lines wrap at the right margin and the canvas grows
// downwards when the text needs more room. It never shrinks.
//
// Until the first call to RenderLetters the canvas shows a short message
// instead of staying blank.
//
// Drawing uses github.com/fogleman/gg. Exports are PNG bytes, a PNG data URL
// or a PNG file.
package canvas

import (
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/streettype/pkg/alphabet"
	"github.com/matzehuels/streettype/pkg/errors"
	"github.com/matzehuels/streettype/pkg/fonts"
	"github.com/matzehuels/streettype/pkg/letters"
)

// Default layout values.
const (
	DefaultWidth      = 800
	DefaultHeight     = 400
	DefaultMargin     = 20
	DefaultSpacing    = 10
	DefaultTextSize   = 48
	DefaultLineHeight = 120

	// EmptyMessage is drawn before any entries were rendered.
	EmptyMessage = "Type something to generate street typography"
)

// Default colors.
var (
	DefaultBackground   color.Color = color.White
	DefaultTextColor    color.Color = color.Gray{Y: 60}
	DefaultMessageColor color.Color = color.Gray{Y: 200}
)

// Config holds the layout and drawing parameters of a Renderer.
type Config struct {
	Width      int
	Height     int
	Margin     int
	Spacing    int
	TextSize   float64
	LineHeight int

	// LetterHeight scales every letter image to this height, keeping its
	// aspect ratio. Zero draws images at their natural size.
	LetterHeight int

	Background   color.Color
	TextColor    color.Color
	MessageColor color.Color
	Message      string
}

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Margin:       DefaultMargin,
		Spacing:      DefaultSpacing,
		TextSize:     DefaultTextSize,
		LineHeight:   DefaultLineHeight,
		Background:   DefaultBackground,
		TextColor:    DefaultTextColor,
		MessageColor: DefaultMessageColor,
		Message:      EmptyMessage,
	}
}

// WithSize returns a copy of c with the given canvas size.
func (c Config) WithSize(width, height int) Config {
	c.Width = width
	c.Height = height
	return c
}

// Validate checks that the configuration can be drawn.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %dx%d", c.Width, c.Height)
	case c.Margin < 0 || 2*c.Margin >= c.Width:
		return errors.New(errors.ErrCodeInvalidInput, "margin %d does not fit width %d", c.Margin, c.Width)
	case c.Spacing < 0:
		return errors.New(errors.ErrCodeInvalidInput, "spacing must not be negative")
	case c.TextSize <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "text size must be positive")
	case c.LineHeight <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "line height must be positive")
	case c.LetterHeight < 0:
		return errors.New(errors.ErrCodeInvalidInput, "letter height must not be negative")
	}
	return nil
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithWidth(w int) Option        { return func(r *Renderer) { r.cfg.Width = w } }
func WithHeight(h int) Option       { return func(r *Renderer) { r.cfg.Height = h } }
func WithMargin(m int) Option       { return func(r *Renderer) { r.cfg.Margin = m } }
func WithSpacing(s int) Option      { return func(r *Renderer) { r.cfg.Spacing = s } }
func WithTextSize(s float64) Option { return func(r *Renderer) { r.cfg.TextSize = s } }
func WithLineHeight(h int) Option   { return func(r *Renderer) { r.cfg.LineHeight = h } }
func WithLetterHeight(h int) Option { return func(r *Renderer) { r.cfg.LetterHeight = h } }

// WithBackground sets the canvas background color.
func WithBackground(c color.Color) Option { return func(r *Renderer) { r.cfg.Background = c } }

// WithTextColor sets the color of characters drawn as text.
func WithTextColor(c color.Color) Option { return func(r *Renderer) { r.cfg.TextColor = c } }

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option { return func(r *Renderer) { r.cfg = cfg } }

// WithLogger sets the logger for redraw diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer draws entry sequences onto a canvas. It is safe for concurrent
// use; every method holds the renderer lock for its whole duration.
type Renderer struct {
	cfg    Config
	logger *log.Logger

	face        font.Face
	messageFace font.Face

	mu       sync.Mutex
	entries  []letters.Entry
	supplied bool
	height   int
	dc       *gg.Context
	layout   Layout
	redraws  int
	scaled   map[alphabet.AssetPath]image.Image
}

// New creates a Renderer and draws its initial empty state.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg:    DefaultConfig(),
		logger: log.New(io.Discard),
		scaled: make(map[alphabet.AssetPath]image.Image),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	var err error
	if r.face, err = fonts.Face(r.cfg.TextSize); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font")
	}
	if r.messageFace, err = fonts.Face(r.cfg.TextSize / 2); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font")
	}

	r.height = r.cfg.Height
	r.redraw()
	return r, nil
}

// RenderLetters replaces the displayed sequence and redraws once.
func (r *Renderer) RenderLetters(entries []letters.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = r.normalize(entries)
	r.supplied = true
	r.redraw()
}

// Resize sets a new canvas width and redraws. The height is kept.
func (r *Renderer) Resize(width int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 2*r.cfg.Margin {
		return errors.New(errors.ErrCodeInvalidInput, "width %d too small for margin %d", width, r.cfg.Margin)
	}
	r.cfg.Width = width
	r.redraw()
	return nil
}

// Width returns the current canvas width.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.Width
}

// Height returns the current canvas height.
func (r *Renderer) Height() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.height
}

// Redraws returns the number of draw passes performed so far.
func (r *Renderer) Redraws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redraws
}

// Layout returns the layout of the last draw pass.
func (r *Renderer) Layout() Layout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

// Image returns the current canvas contents.
func (r *Renderer) Image() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.Image()
}

// normalize scales letter images to the configured letter height. Scaled
// images are kept per asset path, so repeated letters are resized once.
func (r *Renderer) normalize(entries []letters.Entry) []letters.Entry {
	out := make([]letters.Entry, len(entries))
	copy(out, entries)
	if r.cfg.LetterHeight == 0 {
		return out
	}

	for i, e := range out {
		l, ok := e.(letters.Letter)
		if !ok || l.Image == nil || l.Image.Bounds().Dy() == r.cfg.LetterHeight {
			continue
		}
		img, ok := r.scaled[l.Path]
		if !ok {
			img = imaging.Resize(l.Image, 0, r.cfg.LetterHeight, imaging.Lanczos)
			if l.Path != "" {
				r.scaled[l.Path] = img
			}
		}
		out[i] = letters.Letter{Value: l.Value, Path: l.Path, Image: img}
	}
	return out
}

// redraw performs one full draw pass. The caller holds r.mu.
func (r *Renderer) redraw() {
	r.redraws++

	if !r.supplied {
		r.dc = gg.NewContext(r.cfg.Width, r.height)
		r.dc.SetColor(r.cfg.Background)
		r.dc.Clear()
		r.drawMessage()
		r.layout = Layout{Height: r.height}
		return
	}

	// Measure on a scratch context so the layout can size the real one.
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(r.face)
	r.layout = ComputeLayout(r.entries, measure, r.cfg, r.height)
	if r.layout.Height > r.height {
		r.logger.Debug("Growing canvas", "from", r.height, "to", r.layout.Height)
		r.height = r.layout.Height
	}

	r.dc = gg.NewContext(r.cfg.Width, r.height)
	r.dc.SetColor(r.cfg.Background)
	r.dc.Clear()
	r.dc.SetFontFace(r.face)
	r.dc.SetColor(r.cfg.TextColor)

	for _, p := range r.layout.Placements {
		if p.Image != nil {
			r.dc.DrawImage(p.Image, int(p.X), int(p.Y))
			continue
		}
		r.dc.DrawStringAnchored(p.Text, p.X, p.Y, 0, 1)
	}

	r.logger.Debug("Redrew canvas",
		"entries", len(r.entries),
		"lines", r.layout.Lines,
		"width", r.cfg.Width,
		"height", r.height)
}

func (r *Renderer) drawMessage() {
	if r.cfg.Message == "" {
		return
	}
	r.dc.SetFontFace(r.messageFace)
	r.dc.SetColor(r.cfg.MessageColor)
	r.dc.DrawStringAnchored(r.cfg.Message, float64(r.cfg.Width)/2, float64(r.height)/2, 0.5, 0.5)
}
