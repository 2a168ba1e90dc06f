package letters

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streettype/pkg/alphabet"
)

// fakeResolver serves variants from a map and records the order of calls.
type fakeResolver struct {
	variants map[rune][]alphabet.AssetPath
	listErr  map[rune]error
	broken   map[alphabet.AssetPath]bool
	calls    []rune
	loads    []alphabet.AssetPath
}

func (f *fakeResolver) ListVariants(_ context.Context, ch rune, _, _ string) ([]alphabet.AssetPath, error) {
	f.calls = append(f.calls, ch)
	if err := f.listErr[ch]; err != nil {
		return nil, err
	}
	return f.variants[ch], nil
}

func (f *fakeResolver) LoadImage(_ context.Context, p alphabet.AssetPath) (image.Image, error) {
	f.loads = append(f.loads, p)
	if f.broken[p] {
		return nil, &alphabet.ImageLoadError{Path: p, Err: errors.New("decode failed")}
	}
	return image.NewGray(image.Rect(0, 0, 10, 20)), nil
}

func variantsOf(t *testing.T, ch rune, n int) []alphabet.AssetPath {
	t.Helper()
	var out []alphabet.AssetPath
	for i := 1; i <= n; i++ {
		p, err := alphabet.ResolvePath(ch, "sans", "NYC", i)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func kinds(entries []Entry) []Kind {
	out := make([]Kind, len(entries))
	for i, e := range entries {
		out[i] = e.Kind()
	}
	return out
}

func TestSelectClassifiesCharacters(t *testing.T) {
	f := &fakeResolver{variants: map[rune][]alphabet.AssetPath{
		'A': variantsOf(t, 'A', 1),
	}}
	s := NewSelector(f, WithSeed(1))

	entries, err := s.SelectLettersForText(context.Background(), "A\tb!é 1", "sans", "NYC")
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KindLetter,      // A
		KindSpace,       // \t
		KindPlaceholder, // b has no variants
		KindSpecial,     // !
		KindSpecial,     // é
		KindSpace,       // ' '
		KindPlaceholder, // 1 has no variants
	}, kinds(entries))
	assert.Equal(t, []rune{'A', 'b', '1'}, f.calls, "only alphanumerics are resolved")
}

func TestSelectOrderPreserved(t *testing.T) {
	f := &fakeResolver{variants: map[rune][]alphabet.AssetPath{
		'A': variantsOf(t, 'A', 2),
	}}
	s := NewSelector(f, WithSeed(7))

	entries, err := s.SelectLettersForText(context.Background(), "A B", "sans", "NYC")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 'A', entries[0].Char())
	assert.Contains(t, []Kind{KindLetter, KindPlaceholder}, entries[0].Kind())
	assert.Equal(t, Space{Value: ' '}, entries[1])
	assert.Equal(t, 'B', entries[2].Char())
	assert.Contains(t, []Kind{KindLetter, KindPlaceholder}, entries[2].Kind())
	assert.Equal(t, []rune{'A', 'B'}, f.calls)
}

func TestSelectHiScenario(t *testing.T) {
	f := &fakeResolver{variants: map[rune][]alphabet.AssetPath{
		'H': variantsOf(t, 'H', 3),
	}}
	s := NewSelector(f, WithSeed(3))

	text := ApplyCase("Hi!", CaseUpper)
	require.Equal(t, "HI!", text)

	entries, err := s.SelectLettersForText(context.Background(), text, "sans", "NYC")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 'H', entries[0].Char())
	assert.Equal(t, 'I', entries[1].Char())
	assert.Equal(t, Special{Value: '!'}, entries[2])
	assert.Equal(t, KindLetter, entries[0].Kind())
	assert.Equal(t, KindPlaceholder, entries[1].Kind())
}

func TestSelectNoVariantsNeverLetter(t *testing.T) {
	f := &fakeResolver{variants: map[rune][]alphabet.AssetPath{}}
	s := NewSelector(f)

	entries, err := s.SelectLettersForText(context.Background(), "abcXYZ019", "serif", "NYC")
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, KindPlaceholder, e.Kind(), "char %q", e.Char())
	}
	assert.Empty(t, f.loads)
}

func TestSelectLoadFailureBecomesPlaceholder(t *testing.T) {
	paths := variantsOf(t, 'K', 1)
	f := &fakeResolver{
		variants: map[rune][]alphabet.AssetPath{'K': paths},
		broken:   map[alphabet.AssetPath]bool{paths[0]: true},
	}
	s := NewSelector(f)

	entries, err := s.SelectLettersForText(context.Background(), "KK", "sans", "NYC")
	require.NoError(t, err)
	assert.Equal(t, []Entry{Placeholder{Value: 'K'}, Placeholder{Value: 'K'}}, entries)
}

func TestSelectListErrorBecomesPlaceholder(t *testing.T) {
	f := &fakeResolver{listErr: map[rune]error{'Q': errors.New("unknown style")}}
	s := NewSelector(f)

	entries, err := s.SelectLettersForText(context.Background(), "Q", "gothic", "NYC")
	require.NoError(t, err)
	assert.Equal(t, []Entry{Placeholder{Value: 'Q'}}, entries)
}

func TestSelectPicksRandomVariant(t *testing.T) {
	paths := variantsOf(t, 'R', 5)
	f := &fakeResolver{variants: map[rune][]alphabet.AssetPath{'R': paths}}
	s := NewSelector(f, WithSeed(42))

	seen := map[alphabet.AssetPath]int{}
	for range 200 {
		entries, err := s.SelectLettersForText(context.Background(), "R", "sans", "NYC")
		require.NoError(t, err)
		l, ok := entries[0].(Letter)
		require.True(t, ok)
		require.Contains(t, paths, l.Path)
		require.NotNil(t, l.Image)
		seen[l.Path]++
	}

	assert.Len(t, seen, len(paths), "every variant should be chosen at some point")
}

func TestSelectSeedIsReproducible(t *testing.T) {
	paths := variantsOf(t, 'S', 5)
	run := func() []Entry {
		f := &fakeResolver{variants: map[rune][]alphabet.AssetPath{'S': paths}}
		entries, err := NewSelector(f, WithSeed(99)).SelectLettersForText(context.Background(), "SSSSSS", "sans", "NYC")
		require.NoError(t, err)
		return entries
	}

	a, b := run(), run()
	for i := range a {
		assert.Equal(t, a[i].(Letter).Path, b[i].(Letter).Path)
	}
}

func TestSelectCancelled(t *testing.T) {
	f := &fakeResolver{}
	s := NewSelector(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries, err := s.SelectLettersForText(ctx, "abc", "sans", "NYC")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, entries)
}

func TestSelectWithAlphabetResolver(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 12))))

	a1, _ := alphabet.ResolvePath('N', "mono", "NYC", 1)
	bad, _ := alphabet.ResolvePath('Y', "mono", "NYC", 2)
	fsys := fstest.MapFS{
		string(a1):  {Data: buf.Bytes()},
		string(bad): {Data: []byte("garbage")},
	}
	r := alphabet.NewResolver(alphabet.NewFSSource(fsys))
	s := NewSelector(r, WithSeed(5))

	entries, err := s.SelectLettersForText(context.Background(), "NYC", "mono", "NYC")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	letter, ok := entries[0].(Letter)
	require.True(t, ok)
	assert.Equal(t, a1, letter.Path)
	assert.Equal(t, 8, letter.Image.Bounds().Dx())

	assert.Equal(t, Placeholder{Value: 'Y'}, entries[1], "undecodable image falls back")
	assert.Equal(t, Placeholder{Value: 'C'}, entries[2], "missing variants fall back")
}
