// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/dexgraph/internal/domain/entities"
)

// DescriptionIndex stores creature descriptions as vectors for semantic search.
type DescriptionIndex interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// Upsert stores or replaces the description point of a creature.
	Upsert(ctx context.Context, doc entities.DescriptionDocument) error

	// Search returns the creatures whose descriptions are nearest the embedding.
	Search(ctx context.Context, embedding []float32, limit int) ([]entities.DescriptionHit, error)

	// Close closes the index connection.
	Close() error
}
