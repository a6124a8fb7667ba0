package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/ports"
)

// LoadOptions controls a load run.
type LoadOptions struct {
	DryRun bool // Extract and report without touching the graph
	Limit  int  // Stop after this many processed entries (0 = all)
}

// SkippedEntry is an entry skipped for a missing record.
type SkippedEntry struct {
	Entry  entities.CatalogEntry
	Reason string
}

// LoadReport summarizes a load run.
type LoadReport struct {
	Source               string
	DryRun               bool
	Policy               PlaceholderPolicy
	Indexed              int
	Loaded               int
	Skipped              []SkippedEntry
	EntitiesCreated      int
	PlaceholdersCreated  int
	PlaceholdersUpgraded int
	RelationshipsAdded   int
	Duration             time.Duration
}

// Processed returns the number of entries loaded or skipped.
func (r *LoadReport) Processed() int {
	return r.Loaded + len(r.Skipped)
}

// LoaderConfig holds loader settings.
type LoaderConfig struct {
	Language string
	Policy   PlaceholderPolicy
}

// Loader builds the catalog index and materializes every entry in order.
type Loader struct {
	source       ports.CatalogSource
	index        *CatalogIndexBuilder
	extractor    *RecordExtractor
	materializer *GraphMaterializer
	observer     LoadObserver
}

// NewLoader creates a new Loader. observer may be nil.
func NewLoader(source ports.CatalogSource, store ports.GraphStore, cfg LoaderConfig, observer LoadObserver) *Loader {
	if observer == nil {
		observer = Observers{}
	}
	return &Loader{
		source:       source,
		index:        NewCatalogIndexBuilder(source),
		extractor:    NewRecordExtractor(source, cfg.Language),
		materializer: NewGraphMaterializer(store, cfg.Policy),
		observer:     observer,
	}
}

// Load runs one load. Index failures wrap ErrIndex. Entries with a missing
// record are skipped; every other entry error stops the run and is returned
// together with the report so far.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) (*LoadReport, error) {
	start := time.Now()

	index, err := l.index.Build(ctx)
	if err != nil {
		return nil, err
	}

	report := &LoadReport{
		Source:  l.source.Location(),
		DryRun:  opts.DryRun,
		Policy:  l.materializer.Policy(),
		Indexed: index.Len(),
	}
	l.materializer.Reset()

	for _, entry := range index.Entries() {
		if opts.Limit > 0 && report.Processed() >= opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := l.loadEntry(ctx, entry, opts, report); err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(start)
	l.observer.LoadFinished(ctx, report)
	return report, nil
}

func (l *Loader) loadEntry(ctx context.Context, entry entities.CatalogEntry, opts LoadOptions, report *LoadReport) error {
	record, err := l.extractor.Extract(ctx, entry)
	if errors.Is(err, ErrMissingRecord) {
		report.Skipped = append(report.Skipped, SkippedEntry{Entry: entry, Reason: err.Error()})
		l.observer.EntrySkipped(ctx, entry, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("extracting entry %d: %w", entry.DexNumber, err)
	}

	summary := LoadSummary{Entry: entry, Record: record}
	if !opts.DryRun {
		result, err := l.materializer.Materialize(ctx, record)
		if err != nil {
			return fmt.Errorf("materializing %s (entry %d): %w", record.Name, entry.DexNumber, err)
		}
		summary.Result = result

		report.EntitiesCreated += result.EntitiesCreated
		report.RelationshipsAdded += result.RelationshipsAdded
		if result.PlaceholderCreated {
			report.PlaceholdersCreated++
		}
		if result.PlaceholderUpgraded {
			report.PlaceholdersUpgraded++
		}
	}
	report.Loaded++

	if err := l.observer.EntryLoaded(ctx, summary); err != nil {
		return fmt.Errorf("reporting entry %d: %w", entry.DexNumber, err)
	}
	return nil
}
