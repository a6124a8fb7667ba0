// Package mocks provides mock implementations for testing.
package mocks

import "context"

// Embedder is a mock implementation of ports.Embedder.
type Embedder struct {
	EmbeddingResult []float32
	Err             error
	Calls           []string
}

// Embed returns the configured embedding or error.
func (m *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.Calls = append(m.Calls, text)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.EmbeddingResult, nil
}

// Dimensions returns the length of the configured embedding.
func (m *Embedder) Dimensions() uint64 {
	return uint64(len(m.EmbeddingResult))
}
