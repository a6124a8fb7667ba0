package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/dexgraph/internal/infrastructure/config"
)

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.EmbedderConfig
		wantDims uint64
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid config",
			cfg:      config.EmbedderConfig{APIKey: "test-key"},
			wantDims: VectorSize,
		},
		{
			name:     "valid config with model",
			cfg:      config.EmbedderConfig{APIKey: "test-key", Model: "text-embedding-3-large"},
			wantDims: 3072,
		},
		{
			name:    "missing API key",
			cfg:     config.EmbedderConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
		{
			name:    "unknown model",
			cfg:     config.EmbedderConfig{APIKey: "test-key", Model: "gpt-4o"},
			wantErr: true,
			errMsg:  "unknown embedding model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder, err := NewEmbedder(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, embedder)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDims, embedder.Dimensions())
		})
	}
}

// embeddingServer serves /embeddings with vectors of the given size.
func embeddingServer(t *testing.T, size int, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"A strange seed"}, req.Input)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit"}}`))
			return
		}

		vec := make([]float32, size)
		for i := range vec {
			vec[i] = 0.25
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   []any{map[string]any{"object": "embedding", "index": 0, "embedding": vec}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedder_Embed(t *testing.T) {
	srv := embeddingServer(t, VectorSize, http.StatusOK)
	embedder, err := NewEmbedderWithBaseURL(config.EmbedderConfig{APIKey: "test-key"}, srv.URL)
	require.NoError(t, err)

	vec, err := embedder.Embed(context.Background(), "A strange seed")

	require.NoError(t, err)
	assert.Len(t, vec, VectorSize)
	assert.InDelta(t, 0.25, vec[0], 1e-6)
}

func TestEmbedder_Embed_Errors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key"})
		require.NoError(t, err)
		_, err = embedder.Embed(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("wrong dimensions", func(t *testing.T) {
		srv := embeddingServer(t, 3, http.StatusOK)
		embedder, err := NewEmbedderWithBaseURL(config.EmbedderConfig{APIKey: "test-key"}, srv.URL)
		require.NoError(t, err)
		_, err = embedder.Embed(context.Background(), "A strange seed")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimensions")
	})

	t.Run("api error", func(t *testing.T) {
		srv := embeddingServer(t, VectorSize, http.StatusTooManyRequests)
		embedder, err := NewEmbedderWithBaseURL(config.EmbedderConfig{APIKey: "test-key"}, srv.URL)
		require.NoError(t, err)
		_, err = embedder.Embed(context.Background(), "A strange seed")
		require.Error(t, err)
	})
}
