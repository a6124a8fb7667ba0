package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ersonp/dexgraph/internal/application/handlers"
	"github.com/ersonp/dexgraph/internal/domain/ports"
	"github.com/ersonp/dexgraph/internal/domain/services"
	"github.com/ersonp/dexgraph/internal/infrastructure/config"
	embedder "github.com/ersonp/dexgraph/internal/infrastructure/embedder/openai"
	"github.com/ersonp/dexgraph/internal/infrastructure/graphstore/neo4j"
	"github.com/ersonp/dexgraph/internal/infrastructure/graphstore/sqlite"
	"github.com/ersonp/dexgraph/internal/infrastructure/logging"
	"github.com/ersonp/dexgraph/internal/infrastructure/metrics"
	"github.com/ersonp/dexgraph/internal/infrastructure/source/fs"
	"github.com/ersonp/dexgraph/internal/infrastructure/source/s3"
	"github.com/ersonp/dexgraph/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - stores and adapters are internal.
type Deps struct {
	Config          *config.Config
	Log             *logging.Logger
	CreatureHandler *handlers.CreatureHandler
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	store    ports.GraphStore
	embedder *embedder.Embedder // nil unless the description index is enabled
	index    *qdrant.Repository // nil unless the description index is enabled
}

// loadConfig loads the config for the current directory, falling back to
// defaults when dexgraph has not been initialized. override may adjust the
// config before it is validated.
func loadConfig(override func(*config.Config) error) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.LoadOrDefault(cwd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if globalLogMode != "" {
		cfg.Log.Mode = globalLogMode
	}

	if override != nil {
		if err := override(cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	return withInternalDeps(ctx, cfg, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(ctx context.Context, cfg *config.Config, fn func(*internalDeps) error) error {
	log, err := logging.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	store, err := newGraphStore(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// Ensure schema exists
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring graph schema: %w", err)
	}

	deps := &internalDeps{
		Deps: Deps{
			Config:          cfg,
			Log:             log,
			CreatureHandler: handlers.NewCreatureHandler(services.NewCreatureService(store)),
		},
		store: store,
	}

	if cfg.Qdrant.Enabled {
		emb, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		index, err := qdrant.NewRepository(cfg.Qdrant)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer index.Close()

		deps.embedder = emb
		deps.index = index
	}

	return fn(deps)
}

// newGraphStore opens the configured graph store.
func newGraphStore(ctx context.Context, cfg config.StoreConfig, log *logging.Logger) (ports.GraphStore, error) {
	switch cfg.Driver {
	case config.StoreNeo4j:
		client, err := neo4j.NewClient(ctx, cfg.Neo4j, log)
		if err != nil {
			return nil, fmt.Errorf("connecting to neo4j: %w", err)
		}
		return neo4j.NewStore(client, log), nil
	case config.StoreSQLite:
		store, err := sqlite.NewStore(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// newCatalogSource opens the configured catalog source.
func newCatalogSource(ctx context.Context, cfg config.CatalogConfig) (ports.CatalogSource, error) {
	switch cfg.Driver {
	case config.SourceS3:
		src, err := s3.New(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 source: %w", err)
		}
		return src, nil
	case config.SourceFS:
		src, err := fs.NewSource(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("creating fs source: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

// withInitHandler provides the InitHandler.
func withInitHandler(ctx context.Context, cfg *config.Config, fn func(*handlers.InitHandler) error) error {
	return withInternalDeps(ctx, cfg, func(d *internalDeps) error {
		var (
			index      ports.DescriptionIndex
			vectorSize uint64
		)
		if d.index != nil {
			index = d.index
			vectorSize = d.embedder.Dimensions()
		}
		return fn(handlers.NewInitHandler(d.store, index, vectorSize))
	})
}

// withLoadHandler wires the loader and its observers. extra observers run
// after the logger, metrics and description indexer.
func withLoadHandler(ctx context.Context, cfg *config.Config, fn func(*handlers.LoadHandler, *metrics.LoadMetrics) error, extra ...services.LoadObserver) error {
	return withInternalDeps(ctx, cfg, func(d *internalDeps) error {
		source, err := newCatalogSource(ctx, cfg.Catalog)
		if err != nil {
			return err
		}

		policy, err := services.ParsePlaceholderPolicy(cfg.Loader.PlaceholderPolicy)
		if err != nil {
			return err
		}

		loadMetrics, err := metrics.NewLoadMetrics()
		if err != nil {
			return fmt.Errorf("creating metrics: %w", err)
		}

		observers := services.Observers{logging.NewLoadLogger(d.Log), loadMetrics}
		if d.index != nil {
			observers = append(observers, services.NewDescriptionIndexer(d.embedder, d.index))
		}
		observers = append(observers, extra...)

		loader := services.NewLoader(source, d.store, services.LoaderConfig{
			Language: cfg.Catalog.Language,
			Policy:   policy,
		}, observers)

		return fn(handlers.NewLoadHandler(d.store, loader), loadMetrics)
	})
}

// withSearchHandler provides the SearchHandler. The description index must be enabled.
func withSearchHandler(ctx context.Context, fn func(*handlers.SearchHandler) error) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	if !cfg.Qdrant.Enabled {
		return errors.New("description search is disabled (set qdrant.enabled in .dexgraph/config.yaml)")
	}
	return withInternalDeps(ctx, cfg, func(d *internalDeps) error {
		return fn(handlers.NewSearchHandler(services.NewSearchService(d.embedder, d.index)))
	})
}
