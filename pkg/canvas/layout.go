package canvas

import (
	"image"
	"math"

	"github.com/matzehuels/streettype/pkg/letters"
)

// Measurer reports the rendered size of a string at the active text size.
// *gg.Context satisfies it.
type Measurer interface {
	MeasureString(s string) (w, h float64)
}

// Placement is one drawn entry. Image is set for letters drawn as pictures;
// otherwise Text holds the characters drawn with the fallback font.
type Placement struct {
	Entry letters.Entry
	Image image.Image
	Text  string
	X, Y  float64
	Width float64
}

// Layout is the result of one layout pass.
type Layout struct {
	Placements []Placement

	// Height is the canvas height needed to show every line. It is never
	// smaller than the height passed to ComputeLayout.
	Height int

	// Lines is the number of rows used.
	Lines int
}

// ComputeLayout places entries left to right starting at (margin, margin).
//
// Each entry advances the pen by its width plus the letter spacing; a space
// advances by the width of a blank glyph plus the spacing and draws nothing.
// After advancing, if the pen has passed width-margin, it moves to the start
// of the next line. The entry that crossed the edge stays on the line it
// started on.
func ComputeLayout(entries []letters.Entry, m Measurer, cfg Config, height int) Layout {
	margin := float64(cfg.Margin)
	spacing := float64(cfg.Spacing)
	lineHeight := float64(cfg.LineHeight)
	available := float64(cfg.Width - cfg.Margin)

	x, y := margin, margin
	lines := 1
	placements := make([]Placement, 0, len(entries))

	for _, e := range entries {
		var advance float64

		switch e := e.(type) {
		case letters.Space:
			blank, _ := m.MeasureString(" ")
			advance = blank
		case letters.Letter:
			if e.Image != nil {
				w := float64(e.Image.Bounds().Dx())
				placements = append(placements, Placement{Entry: e, Image: e.Image, X: x, Y: y, Width: w})
				advance = w
				break
			}
			advance = placeText(&placements, e, m, x, y)
		case letters.Special, letters.Placeholder:
			advance = placeText(&placements, e, m, x, y)
		}

		x += advance + spacing
		if x > available {
			x = margin
			y += lineHeight
			lines++
		}
	}

	if need := int(math.Ceil(y + lineHeight)); need > height {
		height = need
	}

	return Layout{Placements: placements, Height: height, Lines: lines}
}

func placeText(placements *[]Placement, e letters.Entry, m Measurer, x, y float64) float64 {
	s := string(e.Char())
	w, _ := m.MeasureString(s)
	*placements = append(*placements, Placement{Entry: e, Text: s, X: x, Y: y, Width: w})
	return w
}
