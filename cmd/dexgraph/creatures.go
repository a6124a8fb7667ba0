package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/services"
)

func newCreaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "creatures",
		Short: "List loaded creatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			return withDeps(ctx, func(d *Deps) error {
				views, err := d.CreatureHandler.HandleList(ctx)
				if err != nil {
					return err
				}

				if len(views) == 0 {
					fmt.Fprintln(out, "No creatures found.")
					return nil
				}

				fmt.Fprintf(out, "Creatures (%d total):\n\n", len(views))
				for _, v := range views {
					fmt.Fprintf(out, "  %4s  %-20s %s\n", dexLabel(v), v.Name, strings.Join(v.Categories, ", "))
				}
				return nil
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a creature and its neighbours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			return withDeps(ctx, func(d *Deps) error {
				view, err := d.CreatureHandler.HandleShow(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, view)
				}
				printCreature(out, view)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count entities and relationships in the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			return withDeps(ctx, func(d *Deps) error {
				stats, err := d.CreatureHandler.HandleStats(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintln(out, "Entities:")
				fmt.Fprintf(out, "  %-20s %d\n", entities.EntityCreature, stats.Entities[entities.EntityCreature])
				fmt.Fprintf(out, "  %-20s %d\n", entities.EntityCategory, stats.Entities[entities.EntityCategory])
				fmt.Fprintln(out, "Relationships:")
				fmt.Fprintf(out, "  %-20s %d\n", entities.RelationHasCategory, stats.Relationships[entities.RelationHasCategory])
				fmt.Fprintf(out, "  %-20s %d\n", entities.RelationEvolvesFrom, stats.Relationships[entities.RelationEvolvesFrom])
				fmt.Fprintf(out, "Placeholders:          %d\n", stats.Placeholders)
				return nil
			})
		},
	}
}

func dexLabel(v *services.CreatureView) string {
	if v.Placeholder {
		return "?"
	}
	return fmt.Sprintf("#%d", v.DexNumber)
}

func printCreature(out io.Writer, v *services.CreatureView) {
	fmt.Fprintf(out, "%s (%s)\n", v.Name, dexLabel(v))
	if v.Placeholder {
		fmt.Fprintln(out, "  placeholder: referenced as an ancestor but not loaded")
	}
	if v.Description != "" {
		fmt.Fprintf(out, "  %s\n", v.Description)
	}
	if !v.Placeholder {
		fmt.Fprintf(out, "  Height:      %d\n", v.Height)
		fmt.Fprintf(out, "  Weight:      %d\n", v.Weight)
	}
	if len(v.Categories) > 0 {
		fmt.Fprintf(out, "  Categories:  %s\n", strings.Join(v.Categories, ", "))
	}
	if len(v.Ancestors) > 0 {
		fmt.Fprintf(out, "  Evolves from: %s\n", strings.Join(v.Ancestors, ", "))
	}
	if len(v.Descendants) > 0 {
		fmt.Fprintf(out, "  Evolves into: %s\n", strings.Join(v.Descendants, ", "))
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
