// Package gallery stores shared renders so they can be retrieved by ID.
//
// Sharing a render stores its PNG together with the settings that produced
// it and returns an opaque ID. Implementations for different backends:
//   - memory: in-process storage for tests and single-instance servers
//   - file: JSON metadata plus PNG on disk, for the CLI
//   - mongo: MongoDB collection for multi-instance servers
//
// # Usage
//
//	store, err := gallery.NewFileStore("")  // Uses ~/.local/share/streettype/gallery/
//	if err != nil {
//	    return err
//	}
//	art, err := gallery.New("HI!", "sans", "NYC", pngBytes)
//	if err != nil {
//	    return err
//	}
//	if err := store.Put(ctx, art); err != nil {
//	    return err
//	}
//	fmt.Println(art.ID)
package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for gallery operations.
var (
	// ErrNotFound is returned when an artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned for IDs that are not UUIDs.
	ErrInvalidID = errors.New("invalid artifact id")
)

// Artifact is a shared render.
type Artifact struct {
	ID        string    `json:"id" bson:"_id"`
	Text      string    `json:"text" bson:"text"`
	Style     string    `json:"style" bson:"style"`
	Location  string    `json:"location" bson:"location"`
	Width     int       `json:"width" bson:"width"`
	Height    int       `json:"height" bson:"height"`
	PNG       []byte    `json:"-" bson:"png"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for gallery storage backends.
type Store interface {
	// Put stores an artifact, replacing any artifact with the same ID.
	Put(ctx context.Context, a *Artifact) error

	// Get retrieves an artifact by ID.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Artifact, error)

	// Delete removes an artifact. Deleting a missing artifact is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// New creates an artifact with a fresh ID. The canvas size is read from the
// PNG header.
func New(text, style, location string, data []byte) (*Artifact, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png header: %w", err)
	}
	return &Artifact{
		ID:        uuid.NewString(),
		Text:      text,
		Style:     style,
		Location:  location,
		Width:     cfg.Width,
		Height:    cfg.Height,
		PNG:       data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ValidateID checks that id is a UUID, so it is safe to use in file names
// and queries.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
