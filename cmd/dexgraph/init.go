package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/dexgraph/internal/application/handlers"
	"github.com/ersonp/dexgraph/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new dexgraph project",
		Long:  "Creates a .dexgraph directory with default configuration and provisions the graph schema.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("dexgraph already initialized in %s", cwd)
	}

	if err := config.WriteDefault(cwd); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n", config.ConfigFilePath(cwd))

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	return withInitHandler(ctx, cfg, func(h *handlers.InitHandler) error {
		result, err := h.Handle(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Provisioned %d schema types in the %s store\n", result.SchemaTypes, cfg.Store.Driver)
		if result.CollectionEnsured {
			fmt.Fprintf(out, "Created Qdrant collection: %s\n", cfg.Qdrant.Collection)
		}
		fmt.Fprintln(out, "dexgraph initialized successfully!")
		return nil
	})
}
