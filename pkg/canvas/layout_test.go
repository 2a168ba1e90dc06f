package canvas

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streettype/pkg/letters"
)

// fixedMeasurer gives every rune the same width and a blank a narrower one.
type fixedMeasurer struct {
	glyph, blank float64
}

func (m fixedMeasurer) MeasureString(s string) (float64, float64) {
	var w float64
	for _, r := range s {
		if r == ' ' {
			w += m.blank
		} else {
			w += m.glyph
		}
	}
	return w, 40
}

func letter(ch rune, w, h int) letters.Letter {
	return letters.Letter{Value: ch, Image: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func layoutConfig(width int) Config {
	cfg := DefaultConfig()
	cfg.Width = width
	cfg.Margin = 20
	cfg.Spacing = 10
	cfg.LineHeight = 100
	return cfg
}

func positions(l Layout) [][2]float64 {
	out := make([][2]float64, len(l.Placements))
	for i, p := range l.Placements {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

func TestLayoutWrapsOnlyOnceExceeded(t *testing.T) {
	m := fixedMeasurer{glyph: 30, blank: 12}
	entries := []letters.Entry{letter('A', 100, 80), letter('B', 100, 80), letter('C', 100, 80), letter('D', 100, 80)}

	tests := []struct {
		name  string
		width int
		want  [][2]float64
		lines int
	}{
		{
			// After B the pen sits exactly on the edge: no wrap yet.
			name:  "edge reached",
			width: 260,
			want:  [][2]float64{{20, 20}, {130, 20}, {240, 20}, {20, 120}},
			lines: 2,
		},
		{
			name:  "edge passed after B",
			width: 259,
			want:  [][2]float64{{20, 20}, {130, 20}, {20, 120}, {130, 120}},
			lines: 2,
		},
		{
			name:  "everything fits",
			width: 600,
			want:  [][2]float64{{20, 20}, {130, 20}, {240, 20}, {350, 20}},
			lines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ComputeLayout(entries, m, layoutConfig(tt.width), 400)
			assert.Equal(t, tt.want, positions(l))
			assert.Equal(t, tt.lines, l.Lines)
		})
	}
}

func TestLayoutEntryKinds(t *testing.T) {
	m := fixedMeasurer{glyph: 30, blank: 12}
	entries := []letters.Entry{
		letter('H', 50, 80),
		letters.Space{Value: ' '},
		letters.Placeholder{Value: 'I'},
		letters.Special{Value: '!'},
		letters.Letter{Value: 'X'},
	}

	l := ComputeLayout(entries, m, layoutConfig(800), 400)
	require.Len(t, l.Placements, 4, "spaces draw nothing")

	assert.NotNil(t, l.Placements[0].Image)
	assert.Equal(t, 50.0, l.Placements[0].Width)

	// 20 + (50+10) + (12+10) = 102
	assert.Equal(t, 102.0, l.Placements[1].X)
	assert.Equal(t, "I", l.Placements[1].Text)
	assert.Nil(t, l.Placements[1].Image)

	assert.Equal(t, 142.0, l.Placements[2].X)
	assert.Equal(t, "!", l.Placements[2].Text)

	// A letter without image falls back to text.
	assert.Equal(t, "X", l.Placements[3].Text)
	assert.Equal(t, 182.0, l.Placements[3].X)
}

func TestLayoutHeight(t *testing.T) {
	m := fixedMeasurer{glyph: 30, blank: 12}

	var entries []letters.Entry
	for range 10 {
		entries = append(entries, letter('W', 200, 80))
	}

	// Two letters per line at width 400: 20 -> 230 -> 440, past 380.
	l := ComputeLayout(entries, m, layoutConfig(400), 400)
	assert.Equal(t, 6, l.Lines, "the fifth wrap starts an empty sixth line")
	assert.Equal(t, 20+5*100+100, l.Height)

	small := ComputeLayout(entries[:1], m, layoutConfig(400), 400)
	assert.Equal(t, 400, small.Height, "height never drops below the current one")
}

func TestLayoutEmpty(t *testing.T) {
	l := ComputeLayout(nil, fixedMeasurer{}, layoutConfig(800), 300)
	assert.Empty(t, l.Placements)
	assert.Equal(t, 300, l.Height)
	assert.Equal(t, 1, l.Lines)
}
