package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/matzehuels/streettype/pkg/alphabet"
	"github.com/matzehuels/streettype/pkg/cache"
	"github.com/matzehuels/streettype/pkg/canvas"
	"github.com/matzehuels/streettype/pkg/letters"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Black)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// testAssets builds an asset tree with variants 1-3 of upper-case H in the
// sans style for NYC. No other letter has assets.
func testAssets(t *testing.T) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{}
	for v := 1; v <= 3; v++ {
		p, err := alphabet.ResolvePath('H', "sans", "NYC", v)
		if err != nil {
			t.Fatal(err)
		}
		fsys[string(p)] = &fstest.MapFile{Data: pngBytes(t, 40+v, 60)}
	}
	return fsys
}

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	res := alphabet.NewResolver(alphabet.NewFSSource(testAssets(t)))
	return NewRunner(res, c, nil, nil)
}

func TestExecuteHiScenario(t *testing.T) {
	runner := newTestRunner(t, nil)

	result, err := runner.Execute(context.Background(), Options{
		Text:     "Hi!",
		Style:    "sans",
		Location: "NYC",
		Case:     "upper",
		Seed:     7,
		Formats:  []string{FormatPNG, FormatJSON, FormatDataURL},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Text != "HI!" {
		t.Errorf("Text = %q, want HI!", result.Text)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("Entries = %d, want 3", len(result.Entries))
	}
	if _, ok := result.Entries[0].(letters.Letter); !ok {
		t.Errorf("H should be a Letter, got %T", result.Entries[0])
	}
	if result.Entries[1] != (letters.Placeholder{Value: 'I'}) {
		t.Errorf("I should be a Placeholder, got %#v", result.Entries[1])
	}
	if result.Entries[2] != (letters.Special{Value: '!'}) {
		t.Errorf("! should be Special, got %#v", result.Entries[2])
	}

	want := letters.Counts{Letters: 1, Placeholders: 1, Specials: 1}
	if result.Stats.Counts != want {
		t.Errorf("Counts = %+v, want %+v", result.Stats.Counts, want)
	}

	img, err := png.Decode(bytes.NewReader(result.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("png artifact: %v", err)
	}
	if img.Bounds().Dx() != DefaultWidth {
		t.Errorf("png width = %d, want %d", img.Bounds().Dx(), DefaultWidth)
	}

	if !strings.HasPrefix(string(result.Artifacts[FormatDataURL]), canvas.DataURLPrefix) {
		t.Error("dataurl artifact should be a PNG data URL")
	}

	var m Manifest
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &m); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if m.Text != "HI!" || len(m.Entries) != 3 || m.Entries[2].Kind != letters.KindSpecial {
		t.Errorf("unexpected manifest: %+v", m)
	}
	if !strings.HasPrefix(m.Entries[0].Path, "assets/Alphabet/cities/NYC/alphabet/H/sans-upper/") {
		t.Errorf("manifest path = %q", m.Entries[0].Path)
	}
}

func TestExecuteUsesArtifactCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := newTestRunner(t, fc)
	opts := Options{Text: "HH", Seed: 3, Formats: []string{FormatPNG}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss the cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheHit {
		t.Error("same seed and text should hit the cache")
	}
	if !bytes.Equal(first.Artifacts[FormatPNG], second.Artifacts[FormatPNG]) {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteEmptyText(t *testing.T) {
	runner := newTestRunner(t, nil)

	result, err := runner.Execute(context.Background(), Options{Formats: []string{FormatPNG, FormatJSON}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("Entries = %d, want 0", len(result.Entries))
	}
	if len(result.Artifacts[FormatPNG]) == 0 {
		t.Error("empty text should still produce the placeholder canvas")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := newTestRunner(t, nil)

	if _, err := runner.Execute(context.Background(), Options{Text: "x", Style: "gothic"}); err == nil {
		t.Error("unknown style should fail")
	}
}

func TestExecuteCancelled(t *testing.T) {
	runner := newTestRunner(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Execute(ctx, Options{Text: "HHH"}); err == nil {
		t.Error("cancelled context should fail")
	}
}

func TestRequestHash(t *testing.T) {
	entries := []letters.Entry{letters.Letter{Value: 'A', Path: "a/01.jpg"}, letters.Space{Value: ' '}}
	opts := Options{Style: "sans", Location: "NYC"}

	h1 := RequestHash(opts, entries)
	if h1 != RequestHash(opts, entries) {
		t.Error("hash should be deterministic")
	}

	other := []letters.Entry{letters.Letter{Value: 'A', Path: "a/02.jpg"}, letters.Space{Value: ' '}}
	if h1 == RequestHash(opts, other) {
		t.Error("a different variant should change the hash")
	}

	opts.LetterHeight = 80
	if h1 == RequestHash(opts, entries) {
		t.Error("letter height should change the hash")
	}
}

func TestRequestHashTracksImageContent(t *testing.T) {
	solid := func(c color.Color) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, 40, 60))
		for y := 0; y < 60; y++ {
			for x := 0; x < 40; x++ {
				img.Set(x, y, c)
			}
		}
		return img
	}
	opts := Options{Style: "sans", Location: "NYC"}
	hash := func(img image.Image) string {
		return RequestHash(opts, []letters.Entry{letters.Letter{Value: 'A', Path: "a/01.jpg", Image: img}})
	}

	black := hash(solid(color.Black))
	if black != hash(solid(color.Black)) {
		t.Error("equal images should hash the same")
	}
	if black == hash(solid(color.White)) {
		t.Error("an asset replaced under the same path should change the hash")
	}
	if black == hash(nil) {
		t.Error("a loaded image and a missing one should hash differently")
	}
}
