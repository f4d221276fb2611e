package main

import (
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/npc-forge/pkg/catalog"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the item catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogSource == "" {
			return errors.New("no catalog: pass --catalog or set CATALOG_SOURCE")
		}
		cat, err := catalog.Fetch(cmd.Context(), catalogSource, nil)
		if err != nil {
			return err
		}
		slog.Debug("Item catalog loaded", "items", cat.Len())

		results := cat.Search(args[0], searchLimit)
		if len(results) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No matching items")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, e := range results {
			fmt.Fprintf(tw, "%s\t%s\n", e.ID, e.Category)
		}
		return tw.Flush()
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum results (0 for all)")
}
