package ports

import "context"

// Embedder turns description text into vectors.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the length of every vector Embed returns.
	Dimensions() uint64
}
