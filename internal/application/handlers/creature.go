package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/dexgraph/internal/domain/services"
)

// ErrCreatureNotFound is returned when no creature has the requested name.
var ErrCreatureNotFound = errors.New("creature not found")

// CreatureHandler handles read-side creature operations.
type CreatureHandler struct {
	service *services.CreatureService
}

// NewCreatureHandler creates a new creature handler.
func NewCreatureHandler(service *services.CreatureService) *CreatureHandler {
	return &CreatureHandler{service: service}
}

// HandleShow returns a single creature by name.
func (h *CreatureHandler) HandleShow(ctx context.Context, name string) (*services.CreatureView, error) {
	view, err := h.service.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("getting creature: %w", err)
	}
	if view == nil {
		return nil, fmt.Errorf("%w: %s", ErrCreatureNotFound, name)
	}
	return view, nil
}

// HandleList returns every creature in creation order.
func (h *CreatureHandler) HandleList(ctx context.Context) ([]*services.CreatureView, error) {
	views, err := h.service.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing creatures: %w", err)
	}
	return views, nil
}

// HandleStats returns entity and relationship counts.
func (h *CreatureHandler) HandleStats(ctx context.Context) (*services.GraphStats, error) {
	stats, err := h.service.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	return stats, nil
}
