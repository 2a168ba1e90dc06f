package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/streettype/pkg/canvas"
	"github.com/matzehuels/streettype/pkg/letters"
)

// Render draws entries onto a fresh canvas and encodes every requested
// format. An empty entry sequence leaves the canvas in its empty state,
// which shows the placeholder message.
func Render(entries []letters.Entry, opts Options) (map[string][]byte, error) {
	opts.SetSelectDefaults()
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	r, err := canvas.New(canvas.WithConfig(opts.CanvasConfig()), canvas.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		r.RenderLetters(entries)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))

	var png []byte
	encodePNG := func() ([]byte, error) {
		if png == nil {
			if png, err = r.ExportPNG(); err != nil {
				return nil, err
			}
		}
		return png, nil
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatPNG:
			data, err := encodePNG()
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatDataURL:
			data, err := encodePNG()
			if err != nil {
				return nil, err
			}
			artifacts[format] = []byte(canvas.DataURL(data))
		case FormatJSON:
			data, err := json.MarshalIndent(Manifest{
				Text:     letters.ApplyCase(opts.Text, opts.CaseOption()),
				Style:    opts.Style,
				Location: opts.Location,
				Width:    r.Width(),
				Height:   r.Height(),
				Entries:  letters.Manifest(entries),
				Counts:   letters.Count(entries),
			}, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encode manifest: %w", err)
			}
			artifacts[format] = data
		}
	}

	return artifacts, nil
}
