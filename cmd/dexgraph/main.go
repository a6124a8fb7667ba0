// Package main provides the entry point for the dexgraph CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalLogMode string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := newRootCmd()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dexgraph",
		Short:         "Load a creature catalog into a typed graph store",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globalLogMode, "log-mode", "", "Log mode override (dev or prod)")

	rootCmd.AddCommand(
		newInitCmd(),
		newLoadCmd(),
		newCreaturesCmd(),
		newShowCmd(),
		newStatsCmd(),
		newSearchCmd(),
	)

	return rootCmd
}
