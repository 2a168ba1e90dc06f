// Package letters turns input text into an ordered sequence of render entries.
//
// Each character becomes exactly one [Entry]:
//
//   - [Space] for whitespace
//   - [Special] for characters outside [A-Za-z0-9] (punctuation, accents, symbols)
//   - [Letter] for alphanumerics with a loaded letterform image
//   - [Placeholder] for alphanumerics without a usable image
//
// Entry is a closed set: the four types above are its only implementations,
// and consumers switch over them exhaustively.
package letters

import (
	"image"

	"github.com/matzehuels/streettype/pkg/alphabet"
)

// Kind names an entry type in logs and JSON manifests.
type Kind string

// Entry kinds.
const (
	KindSpace       Kind = "space"
	KindSpecial     Kind = "special"
	KindPlaceholder Kind = "placeholder"
	KindLetter      Kind = "letter"
)

// Entry is one rendered position of the input text. Entries are immutable.
type Entry interface {
	// Kind returns the entry type.
	Kind() Kind

	// Char returns the source character.
	Char() rune

	entry()
}

// Space is a whitespace character.
type Space struct{ Value rune }

// Special is a character with no letterform assets, drawn as text.
type Special struct{ Value rune }

// Placeholder is an alphanumeric character whose letterform could not be
// found or loaded. It is drawn as text.
type Placeholder struct{ Value rune }

// Letter is an alphanumeric character with a selected letterform. Image may
// be nil if the image did not materialize; the renderer then draws Value as
// text.
type Letter struct {
	Value rune
	Path  alphabet.AssetPath
	Image image.Image
}

func (Space) Kind() Kind       { return KindSpace }
func (Special) Kind() Kind     { return KindSpecial }
func (Placeholder) Kind() Kind { return KindPlaceholder }
func (Letter) Kind() Kind      { return KindLetter }

func (e Space) Char() rune       { return e.Value }
func (e Special) Char() rune     { return e.Value }
func (e Placeholder) Char() rune { return e.Value }
func (e Letter) Char() rune      { return e.Value }

func (Space) entry()       {}
func (Special) entry()     {}
func (Placeholder) entry() {}
func (Letter) entry()      {}

// ManifestEntry is the JSON form of an entry.
type ManifestEntry struct {
	Kind Kind   `json:"kind"`
	Char string `json:"char"`
	Path string `json:"path,omitempty"`
}

// Manifest converts entries to their JSON form.
func Manifest(entries []Entry) []ManifestEntry {
	out := make([]ManifestEntry, len(entries))
	for i, e := range entries {
		m := ManifestEntry{Kind: e.Kind(), Char: string(e.Char())}
		if l, ok := e.(Letter); ok {
			m.Path = string(l.Path)
		}
		out[i] = m
	}
	return out
}

// Counts tallies entries by kind.
type Counts struct {
	Letters      int `json:"letters"`
	Placeholders int `json:"placeholders"`
	Specials     int `json:"specials"`
	Spaces       int `json:"spaces"`
}

// Count tallies entries by kind.
func Count(entries []Entry) Counts {
	var c Counts
	for _, e := range entries {
		switch e.(type) {
		case Letter:
			c.Letters++
		case Placeholder:
			c.Placeholders++
		case Special:
			c.Specials++
		case Space:
			c.Spaces++
		}
	}
	return c
}
