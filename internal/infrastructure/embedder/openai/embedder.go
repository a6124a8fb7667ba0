// Package openai provides an Embedder implementation using OpenAI.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/dexgraph/internal/infrastructure/config"
)

// VectorSize is the dimension of text-embedding-3-small vectors.
const VectorSize = 1536

// modelDimensions lists the vector size of known embedding models.
var modelDimensions = map[openai.EmbeddingModel]uint64{
	openai.SmallEmbedding3: VectorSize,
	openai.LargeEmbedding3: 3072,
	openai.AdaEmbeddingV2:  1536,
}

// Embedder implements the Embedder interface using OpenAI.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions uint64
}

// NewEmbedder creates a new OpenAI embedder.
func NewEmbedder(cfg config.EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	return newEmbedder(openai.DefaultConfig(cfg.APIKey), cfg.Model)
}

// NewEmbedderWithBaseURL creates an embedder talking to an OpenAI-compatible endpoint.
func NewEmbedderWithBaseURL(cfg config.EmbedderConfig, baseURL string) (*Embedder, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL
	return newEmbedder(clientCfg, cfg.Model)
}

func newEmbedder(clientCfg openai.ClientConfig, modelName string) (*Embedder, error) {
	model := openai.SmallEmbedding3
	if modelName != "" {
		model = openai.EmbeddingModel(modelName)
	}

	dims, ok := modelDimensions[model]
	if !ok {
		return nil, fmt.Errorf("unknown embedding model %q", model)
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		dimensions: dims,
	}, nil
}

// Dimensions returns the vector size of the configured model.
func (e *Embedder) Dimensions() uint64 {
	return e.dimensions
}

// Embed generates a vector embedding for a creature description or query.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("text is required")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("creating embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	embedding := resp.Data[0].Embedding
	if uint64(len(embedding)) != e.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(embedding), e.dimensions)
	}
	return embedding, nil
}
