package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/dexgraph/internal/domain/ports"
	"github.com/ersonp/dexgraph/internal/domain/services"
)

// LoadHandler handles catalog loads.
type LoadHandler struct {
	store  ports.GraphStore
	loader *services.Loader
}

// NewLoadHandler creates a new load handler.
func NewLoadHandler(store ports.GraphStore, loader *services.Loader) *LoadHandler {
	return &LoadHandler{
		store:  store,
		loader: loader,
	}
}

// Handle provisions the schema and runs one load. The report is returned
// alongside a load error so callers can show partial progress.
func (h *LoadHandler) Handle(ctx context.Context, opts services.LoadOptions) (*services.LoadReport, error) {
	if err := h.store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensuring graph schema: %w", err)
	}

	report, err := h.loader.Load(ctx, opts)
	if err != nil {
		return report, fmt.Errorf("loading catalog: %w", err)
	}

	return report, nil
}
