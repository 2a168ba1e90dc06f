// Package fonts provides the font faces used for fallback glyphs on the canvas.
//
// The Go Regular TrueType font ships inside golang.org/x/image, so the binary
// needs no font files on disk. The parsed font is cached after first use and
// faces are created per size.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the display name of the fallback font.
const FontFamily = "Go Regular"

// Parsed font (computed once on first access).
var (
	regular     *truetype.Font
	regularErr  error
	regularOnce sync.Once
)

// Regular returns the parsed Go Regular font.
func Regular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
		if regularErr != nil {
			regularErr = fmt.Errorf("parse font: %w", regularErr)
		}
	})
	return regular, regularErr
}

// Face returns a face of the fallback font at size points (72 DPI, so points
// equal pixels).
func Face(size float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
