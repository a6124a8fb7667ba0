package mocks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/dexgraph/internal/domain/ports"
)

// CatalogSource is an in-memory implementation of ports.CatalogSource.
type CatalogSource struct {
	Documents map[string]string
	Errs      map[string]error // per-document open errors
	Opened    []string
}

// NewCatalogSource creates a new mock CatalogSource.
func NewCatalogSource() *CatalogSource {
	return &CatalogSource{
		Documents: make(map[string]string),
		Errs:      make(map[string]error),
	}
}

// Open returns the named document.
func (m *CatalogSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.Opened = append(m.Opened, name)
	if err := m.Errs[name]; err != nil {
		return nil, err
	}
	doc, ok := m.Documents[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ports.ErrDocumentNotFound)
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

// Location returns a fixed location.
func (m *CatalogSource) Location() string {
	return "mem://catalog"
}
