package services

import (
	"context"

	"github.com/ersonp/dexgraph/internal/domain/entities"
)

// LoadSummary describes one successfully processed entry.
// Result is nil for dry runs.
type LoadSummary struct {
	Entry  entities.CatalogEntry
	Record *entities.CreatureRecord
	Result *MaterializeResult
}

// LoadObserver receives progress events from the Loader.
type LoadObserver interface {
	// EntryLoaded is called after an entry is materialized. A returned error
	// aborts the load.
	EntryLoaded(ctx context.Context, summary LoadSummary) error

	// EntrySkipped is called when an entry has a missing record.
	EntrySkipped(ctx context.Context, entry entities.CatalogEntry, err error)

	// LoadFinished is called once after the last entry.
	LoadFinished(ctx context.Context, report *LoadReport)
}

// Observers fans events out to several observers in order.
type Observers []LoadObserver

// EntryLoaded notifies each observer and stops at the first error.
func (o Observers) EntryLoaded(ctx context.Context, summary LoadSummary) error {
	for _, obs := range o {
		if err := obs.EntryLoaded(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

// EntrySkipped notifies each observer.
func (o Observers) EntrySkipped(ctx context.Context, entry entities.CatalogEntry, err error) {
	for _, obs := range o {
		obs.EntrySkipped(ctx, entry, err)
	}
}

// LoadFinished notifies each observer.
func (o Observers) LoadFinished(ctx context.Context, report *LoadReport) {
	for _, obs := range o {
		obs.LoadFinished(ctx, report)
	}
}
