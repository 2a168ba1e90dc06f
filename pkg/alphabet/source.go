package alphabet

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"slices"

	"github.com/matzehuels/streettype/pkg/errors"
)

// Sentinel errors returned by sources.
var (
	// ErrNotFound is returned when an asset does not exist.
	ErrNotFound = stderrors.New("asset not found")

	// ErrNetwork is returned for remote failures (timeouts, connection errors, 5xx).
	ErrNetwork = stderrors.New("network error")
)

// Source provides access to an asset tree.
type Source interface {
	// Name identifies the source kind in cache keys and logs ("fs", "http").
	Name() string

	// Stat checks that path exists without reading it.
	Stat(ctx context.Context, path AssetPath) error

	// Open returns the raw bytes of path. Callers close the reader.
	Open(ctx context.Context, path AssetPath) (io.ReadCloser, error)
}

// FSSource reads assets from a file system rooted at the web root (the
// directory containing "assets/").
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a source over fsys, typically os.DirFS(root).
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Name returns "fs".
func (s *FSSource) Name() string { return "fs" }

// Stat checks that path exists and is a regular file.
func (s *FSSource) Stat(ctx context.Context, path AssetPath) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := errors.ValidatePath(string(path)); err != nil {
		return err
	}
	info, err := fs.Stat(s.fsys, string(path))
	if err != nil {
		return mapFSError(path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	return nil
}

// Open opens path for reading. Paths that are absolute or escape the root
// are rejected with an INVALID_PATH error.
func (s *FSSource) Open(ctx context.Context, path AssetPath) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(string(path)); err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(string(path))
	if err != nil {
		return nil, mapFSError(path, err)
	}
	return f, nil
}

// Locations lists the city folders present in the asset tree, sorted.
func (s *FSSource) Locations() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, LocationsDir())
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var locations []string
	for _, e := range entries {
		if e.IsDir() {
			locations = append(locations, e.Name())
		}
	}
	slices.Sort(locations)
	return locations, nil
}

func mapFSError(path AssetPath, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}

// Ensure FSSource implements Source.
var _ Source = (*FSSource)(nil)
