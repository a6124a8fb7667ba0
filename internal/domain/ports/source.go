package ports

import (
	"context"
	"errors"
	"io"
)

// ErrDocumentNotFound is wrapped by CatalogSource implementations when a
// named document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// CatalogSource opens the raw catalog documents by name.
type CatalogSource interface {
	// Open returns a reader for the named document. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Location describes where documents are read from (for logs).
	Location() string
}
