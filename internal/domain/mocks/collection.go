package mocks

import (
	"context"

	"github.com/ersonp/dexgraph/internal/domain/entities"
)

// DescriptionIndex is a mock implementation of ports.DescriptionIndex.
type DescriptionIndex struct {
	Docs       map[string]entities.DescriptionDocument
	Hits       []entities.DescriptionHit
	VectorSize uint64
	Err        error

	EnsureCallCount int
	LastLimit       int
}

// NewDescriptionIndex creates a new mock DescriptionIndex.
func NewDescriptionIndex() *DescriptionIndex {
	return &DescriptionIndex{Docs: make(map[string]entities.DescriptionDocument)}
}

// EnsureCollection records the vector size.
func (m *DescriptionIndex) EnsureCollection(_ context.Context, vectorSize uint64) error {
	m.EnsureCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.VectorSize = vectorSize
	return nil
}

// Upsert stores the document by creature ID.
func (m *DescriptionIndex) Upsert(_ context.Context, doc entities.DescriptionDocument) error {
	if m.Err != nil {
		return m.Err
	}
	m.Docs[doc.CreatureID] = doc
	return nil
}

// Search returns the configured hits, truncated to limit.
func (m *DescriptionIndex) Search(_ context.Context, _ []float32, limit int) ([]entities.DescriptionHit, error) {
	m.LastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Hits) > limit {
		return m.Hits[:limit], nil
	}
	return m.Hits, nil
}

// Close does nothing.
func (m *DescriptionIndex) Close() error {
	return nil
}
