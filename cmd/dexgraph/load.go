package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/dexgraph/internal/application/handlers"
	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/services"
	"github.com/ersonp/dexgraph/internal/infrastructure/config"
	"github.com/ersonp/dexgraph/internal/infrastructure/metrics"
)

type loadFlags struct {
	dir         string
	dryRun      bool
	limit       int
	policy      string
	metricsFile string
	quiet       bool
}

func newLoadCmd() *cobra.Command {
	var flags loadFlags

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the catalog into the graph store",
		Long: `Reads the catalog index and every entry's documents, then creates the
creatures, categories and evolution links in the configured graph store.

Entries whose documents are missing are reported and skipped.

Examples:
  dexgraph load --dir ./data
  dexgraph load --dry-run --limit 10
  dexgraph load --policy keep --metrics-file load.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.dir, "dir", "d", "", "Catalog directory (overrides catalog.dir)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Extract and report entries without writing to the graph")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", DefaultLoadLimit, "Stop after this many entries (0 = all)")
	cmd.Flags().StringVar(&flags.policy, "policy", "", "Placeholder policy: upgrade or keep (overrides loader.placeholder_policy)")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus text metrics to this file after the run")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Only print the final summary")

	return cmd
}

func runLoad(cmd *cobra.Command, flags loadFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if flags.limit < 0 {
		return errors.New("--limit must not be negative")
	}

	cfg, err := loadConfig(func(cfg *config.Config) error {
		if flags.dir != "" {
			dir, err := filepath.Abs(flags.dir)
			if err != nil {
				return fmt.Errorf("resolving catalog dir: %w", err)
			}
			cfg.Catalog.Driver = config.SourceFS
			cfg.Catalog.Dir = dir
		}
		if flags.policy != "" {
			cfg.Loader.PlaceholderPolicy = flags.policy
		}
		return nil
	})
	if err != nil {
		return err
	}

	var extra []services.LoadObserver
	if !flags.quiet {
		extra = append(extra, &entryPrinter{out: out})
	}

	return withLoadHandler(ctx, cfg, func(h *handlers.LoadHandler, m *metrics.LoadMetrics) error {
		report, loadErr := h.Handle(ctx, services.LoadOptions{
			DryRun: flags.dryRun,
			Limit:  flags.limit,
		})
		if report != nil {
			printReport(out, report)
		}

		if flags.metricsFile != "" {
			if err := m.WriteTextfile(flags.metricsFile); err != nil {
				return fmt.Errorf("writing metrics: %w", err)
			}
		}

		return loadErr
	}, extra...)
}

// entryPrinter prints a human-readable block for each entry.
type entryPrinter struct {
	out io.Writer
}

func (p *entryPrinter) EntryLoaded(_ context.Context, s services.LoadSummary) error {
	r := s.Record
	verb := "Creating"
	if s.Result == nil {
		verb = "Would create"
	}
	fmt.Fprintf(p.out, "%s [%s]\n", verb, r.Name)
	fmt.Fprintf(p.out, "    Dex Number    [%d]\n", r.DexNumber)
	fmt.Fprintf(p.out, "    Evolves From  [%s]\n", r.EvolvesFrom)
	fmt.Fprintf(p.out, "    Description   [%s]\n", r.Description)
	fmt.Fprintf(p.out, "    Height        [%d]\n", r.Height)
	fmt.Fprintf(p.out, "    Weight        [%d]\n", r.Weight)
	fmt.Fprintln(p.out, "    Categories:")
	for _, c := range r.Categories {
		fmt.Fprintf(p.out, "        -> [%s]\n", c)
	}
	return nil
}

func (p *entryPrinter) EntrySkipped(_ context.Context, entry entities.CatalogEntry, _ error) {
	fmt.Fprintf(p.out, "Missing record for entry [%d]\n", entry.DexNumber)
}

func (p *entryPrinter) LoadFinished(context.Context, *services.LoadReport) {}

func printReport(out io.Writer, report *services.LoadReport) {
	fmt.Fprintln(out)
	if report.DryRun {
		fmt.Fprintln(out, "Dry run, nothing was written.")
	}
	fmt.Fprintf(out, "Source:         %s\n", report.Source)
	fmt.Fprintf(out, "Indexed:        %d\n", report.Indexed)
	fmt.Fprintf(out, "Loaded:         %d\n", report.Loaded)
	fmt.Fprintf(out, "Skipped:        %d\n", len(report.Skipped))
	if !report.DryRun {
		fmt.Fprintf(out, "Entities:       %d\n", report.EntitiesCreated)
		fmt.Fprintf(out, "Relationships:  %d\n", report.RelationshipsAdded)
		fmt.Fprintf(out, "Placeholders:   %d created, %d upgraded (policy %s)\n", report.PlaceholdersCreated, report.PlaceholdersUpgraded, report.Policy)
	}
	fmt.Fprintf(out, "Duration:       %s\n", report.Duration.Round(time.Millisecond))
}
