// Package metrics exposes load counters through Prometheus.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/services"
)

const namespace = "dexgraph"

// LoadMetrics is a services.LoadObserver counting load progress.
type LoadMetrics struct {
	registry *prometheus.Registry

	entries       *prometheus.CounterVec
	entities      prometheus.Counter
	placeholders  *prometheus.CounterVec
	relationships prometheus.Counter
	lastDuration  prometheus.Gauge
	lastIndexed   prometheus.Gauge
}

// NewLoadMetrics creates the counters and registers them on a fresh registry.
func NewLoadMetrics() (*LoadMetrics, error) {
	m := &LoadMetrics{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Catalog entries processed, by outcome.",
		}, []string{"outcome"}),
		entities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_created_total",
			Help:      "Graph entities created.",
		}),
		placeholders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholders_total",
			Help:      "Placeholder creatures, by event.",
		}, []string{"event"}),
		relationships: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationships_created_total",
			Help:      "Relationship instances created.",
		}),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_duration_seconds",
			Help:      "Duration of the last completed load.",
		}),
		lastIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_indexed_entries",
			Help:      "Entries listed in the catalog index of the last completed load.",
		}),
	}

	collectors := []prometheus.Collector{m.entries, m.entities, m.placeholders, m.relationships, m.lastDuration, m.lastIndexed}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering load metrics: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry holding the load metrics.
func (m *LoadMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// EntryLoaded counts a processed entry and its graph mutations.
func (m *LoadMetrics) EntryLoaded(_ context.Context, s services.LoadSummary) error {
	if s.Result == nil {
		m.entries.WithLabelValues("dry_run").Inc()
		return nil
	}
	m.entries.WithLabelValues("loaded").Inc()
	m.entities.Add(float64(s.Result.EntitiesCreated))
	m.relationships.Add(float64(s.Result.RelationshipsAdded))
	if s.Result.PlaceholderCreated {
		m.placeholders.WithLabelValues("created").Inc()
	}
	if s.Result.PlaceholderUpgraded {
		m.placeholders.WithLabelValues("upgraded").Inc()
	}
	return nil
}

// EntrySkipped counts a skipped entry.
func (m *LoadMetrics) EntrySkipped(context.Context, entities.CatalogEntry, error) {
	m.entries.WithLabelValues("skipped").Inc()
}

// LoadFinished records run-level gauges.
func (m *LoadMetrics) LoadFinished(_ context.Context, report *services.LoadReport) {
	m.lastDuration.Set(report.Duration.Seconds())
	m.lastIndexed.Set(float64(report.Indexed))
}

// WriteTextfile writes the metrics in text exposition format, for the
// node_exporter textfile collector.
func (m *LoadMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
