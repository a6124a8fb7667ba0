// Package fs reads catalog documents from a local directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ersonp/dexgraph/internal/domain/ports"
)

// Source implements ports.CatalogSource over a directory.
type Source struct {
	dir string
}

// NewSource creates a source rooted at dir.
func NewSource(dir string) (*Source, error) {
	if dir == "" {
		return nil, errors.New("catalog directory is required")
	}
	return &Source{dir: dir}, nil
}

// Open opens a document in the catalog directory.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid document name %q", name)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// Location returns the catalog directory.
func (s *Source) Location() string {
	return s.dir
}
