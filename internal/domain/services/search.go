package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/ports"
)

// DefaultSearchLimit is the number of hits returned when no limit is given.
const DefaultSearchLimit = 5

// SearchService finds creatures by description similarity.
type SearchService struct {
	embedder ports.Embedder
	index    ports.DescriptionIndex
}

// NewSearchService creates a new SearchService.
func NewSearchService(embedder ports.Embedder, index ports.DescriptionIndex) *SearchService {
	return &SearchService{
		embedder: embedder,
		index:    index,
	}
}

// Search embeds the query and returns the nearest descriptions.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]entities.DescriptionHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.index.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching descriptions: %w", err)
	}
	return hits, nil
}

// DescriptionIndexer is a LoadObserver that indexes each loaded creature's
// description. Dry-run entries and entries without a description are ignored.
type DescriptionIndexer struct {
	embedder ports.Embedder
	index    ports.DescriptionIndex
	ensured  bool
	indexed  int
}

// NewDescriptionIndexer creates a new DescriptionIndexer.
func NewDescriptionIndexer(embedder ports.Embedder, index ports.DescriptionIndex) *DescriptionIndexer {
	return &DescriptionIndexer{
		embedder: embedder,
		index:    index,
	}
}

// Indexed returns the number of descriptions upserted.
func (d *DescriptionIndexer) Indexed() int {
	return d.indexed
}

// EntryLoaded embeds and upserts the entry's description.
func (d *DescriptionIndexer) EntryLoaded(ctx context.Context, summary LoadSummary) error {
	if summary.Result == nil || summary.Record.Description == "" {
		return nil
	}

	if !d.ensured {
		if err := d.index.EnsureCollection(ctx, d.embedder.Dimensions()); err != nil {
			return fmt.Errorf("ensuring description collection: %w", err)
		}
		d.ensured = true
	}

	embedding, err := d.embedder.Embed(ctx, summary.Record.Description)
	if err != nil {
		return fmt.Errorf("embedding description of %s: %w", summary.Record.Name, err)
	}

	doc := entities.DescriptionDocument{
		CreatureID:  summary.Result.Creature.ID,
		Name:        summary.Record.Name,
		DexNumber:   summary.Record.DexNumber,
		Description: summary.Record.Description,
		Embedding:   embedding,
	}
	if err := d.index.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("indexing description of %s: %w", summary.Record.Name, err)
	}
	d.indexed++
	return nil
}

// EntrySkipped does nothing.
func (d *DescriptionIndexer) EntrySkipped(context.Context, entities.CatalogEntry, error) {}

// LoadFinished does nothing.
func (d *DescriptionIndexer) LoadFinished(context.Context, *LoadReport) {}
