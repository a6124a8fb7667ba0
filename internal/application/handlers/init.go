// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/ports"
)

// InitHandler provisions the graph schema and, when configured, the
// description collection.
type InitHandler struct {
	store      ports.GraphStore
	index      ports.DescriptionIndex
	vectorSize uint64
}

// NewInitHandler creates a new init handler. index may be nil.
func NewInitHandler(store ports.GraphStore, index ports.DescriptionIndex, vectorSize uint64) *InitHandler {
	return &InitHandler{
		store:      store,
		index:      index,
		vectorSize: vectorSize,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	SchemaTypes       int
	CollectionEnsured bool
}

// Handle creates the graph schema and seeds the vocabulary.
func (h *InitHandler) Handle(ctx context.Context) (*InitResult, error) {
	if err := h.store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensuring graph schema: %w", err)
	}

	result := &InitResult{SchemaTypes: len(entities.DefaultSchema)}

	if h.index != nil {
		if err := h.index.EnsureCollection(ctx, h.vectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
		result.CollectionEnsured = true
	}

	return result, nil
}
