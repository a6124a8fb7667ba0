package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/dexgraph/internal/application/handlers"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find creatures by description",
		Long:  "Performs semantic search over the indexed creature descriptions. Requires qdrant.enabled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			return withSearchHandler(ctx, func(h *handlers.SearchHandler) error {
				result, err := h.Handle(ctx, args[0], limit)
				if err != nil {
					return err
				}

				if len(result.Hits) == 0 {
					fmt.Fprintln(out, "No creatures found.")
					return nil
				}

				fmt.Fprintf(out, "Found %d creatures:\n\n", len(result.Hits))
				for i, hit := range result.Hits {
					fmt.Fprintf(out, "%d. %s (#%d) score %.3f\n", i+1, hit.Name, hit.DexNumber, hit.Score)
					fmt.Fprintf(out, "   %s\n\n", hit.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")

	return cmd
}
