package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streettype/pkg/errors"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		ch       rune
		style    string
		location string
		variant  int
		want     AssetPath
	}{
		{"lowercase mono", 'a', "mono", "NYC", 1, "assets/Alphabet/cities/NYC/alphabet/A/monospace-lower/01.jpg"},
		{"uppercase sans", 'H', "sans", "NYC", 3, "assets/Alphabet/cities/NYC/alphabet/H/sans-upper/03.jpg"},
		{"digit counts as upper", '7', "serif", "London", 5, "assets/Alphabet/cities/London/alphabet/7/serif-upper/05.jpg"},
		{"script lower", 'z', "script", "sao-paulo", 2, "assets/Alphabet/cities/sao-paulo/alphabet/Z/script-lower/02.jpg"},
		{"decorative", 'Q', "decorative", "NYC", 4, "assets/Alphabet/cities/NYC/alphabet/Q/decorative-upper/04.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(tt.ch, tt.style, tt.location, tt.variant)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePathDeterministic(t *testing.T) {
	a, err := ResolvePath('k', "serif", "NYC", 2)
	require.NoError(t, err)
	b, err := ResolvePath('k', "serif", "NYC", 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolvePathRejectsNonAlphanumeric(t *testing.T) {
	for _, ch := range []rune{' ', '!', '-', '_', '.', 'é', 'ß', '字', '\n', '0' - 1, '9' + 1, 'A' - 1, 'z' + 1} {
		p, err := ResolvePath(ch, "sans", "NYC", 1)
		assert.Empty(t, p, "char %q", ch)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidCharacter), "char %q: got %v", ch, err)
	}
}

func TestResolvePathRejectsUnknownStyle(t *testing.T) {
	for _, style := range []string{"", "monospace", "Sans", "gothic"} {
		p, err := ResolvePath('A', style, "NYC", 1)
		assert.Empty(t, p, "style %q", style)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidStyle), "style %q: got %v", style, err)
	}
}

func TestResolvePathRejectsBadLocationAndVariant(t *testing.T) {
	_, err := ResolvePath('A', "sans", "../etc", 1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidLocation))

	_, err = ResolvePath('A', "sans", "NYC", 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = ResolvePath('A', "sans", "NYC", MaxVariants+1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestStyles(t *testing.T) {
	assert.Equal(t, []string{"decorative", "mono", "sans", "script", "serif"}, Styles())

	dir, ok := StyleFolder("mono")
	assert.True(t, ok)
	assert.Equal(t, "monospace", dir)

	assert.NoError(t, ValidateStyle("serif"))
	assert.Error(t, ValidateStyle("comic"))
}
