package logging

import (
	"context"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/services"
)

// LoadLogger is a services.LoadObserver writing one record per event.
type LoadLogger struct {
	log *Logger
}

// NewLoadLogger creates a new LoadLogger.
func NewLoadLogger(log *Logger) *LoadLogger {
	return &LoadLogger{log: log.With("component", "loader")}
}

// EntryLoaded logs the normalized record.
func (l *LoadLogger) EntryLoaded(_ context.Context, s services.LoadSummary) error {
	r := s.Record
	l.log.Info("creature loaded",
		"name", r.Name,
		"dex_number", r.DexNumber,
		"evolves_from", r.EvolvesFrom,
		"description", r.Description,
		"height", r.Height,
		"weight", r.Weight,
		"categories", r.Categories,
		"dry_run", s.Result == nil,
	)

	if s.Result != nil {
		if s.Result.PlaceholderCreated {
			l.log.Debug("placeholder created", "name", r.EvolvesFrom, "for", r.Name)
		}
		if s.Result.PlaceholderUpgraded {
			l.log.Debug("placeholder upgraded", "name", r.Name, "entity_id", s.Result.Creature.ID)
		}
	}
	return nil
}

// EntrySkipped logs a warning for a missing record.
func (l *LoadLogger) EntrySkipped(_ context.Context, entry entities.CatalogEntry, err error) {
	l.log.Warn("missing record, skipping entry",
		"dex_number", entry.DexNumber,
		"reference_key", entry.ReferenceKey,
		"error", err,
	)
}

// LoadFinished logs the run summary.
func (l *LoadLogger) LoadFinished(_ context.Context, report *services.LoadReport) {
	l.log.Info("load finished",
		"source", report.Source,
		"dry_run", report.DryRun,
		"indexed", report.Indexed,
		"loaded", report.Loaded,
		"skipped", len(report.Skipped),
		"entities_created", report.EntitiesCreated,
		"placeholders_created", report.PlaceholdersCreated,
		"placeholders_upgraded", report.PlaceholdersUpgraded,
		"relationships_added", report.RelationshipsAdded,
		"duration", report.Duration,
	)
}
