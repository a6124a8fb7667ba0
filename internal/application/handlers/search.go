package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/services"
)

// SearchHandler handles description searches.
type SearchHandler struct {
	service *services.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service *services.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// SearchResult contains the result of a search.
type SearchResult struct {
	Query string
	Hits  []entities.DescriptionHit
}

// Handle searches for creatures whose description matches the query.
func (h *SearchHandler) Handle(ctx context.Context, query string, limit int) (*SearchResult, error) {
	hits, err := h.service.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching descriptions: %w", err)
	}

	return &SearchResult{
		Query: query,
		Hits:  hits,
	}, nil
}
