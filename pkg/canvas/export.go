package canvas

import (
	"bytes"
	"encoding/base64"

	"github.com/matzehuels/streettype/pkg/errors"
)

// DataURLPrefix starts every exported data URL.
const DataURLPrefix = "data:image/png;base64,"

// ExportPNG encodes the current canvas as PNG.
func (r *Renderer) ExportPNG() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	if err := r.dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// ExportDataURL encodes the current canvas as a PNG data URL.
func (r *Renderer) ExportDataURL() (string, error) {
	data, err := r.ExportPNG()
	if err != nil {
		return "", err
	}
	return DataURL(data), nil
}

// ExportFile writes the current canvas to path as PNG.
func (r *Renderer) ExportFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.dc.SavePNG(path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// DataURL wraps PNG bytes in a data URL.
func DataURL(png []byte) string {
	return DataURLPrefix + base64.StdEncoding.EncodeToString(png)
}
