// Command forge builds NPC content packs from YAML manifests.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose       bool
	catalogSource string
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "NPC content pack builder",
	Long:  `forge turns NPC manifests into installable content packs and searches the item catalog.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&catalogSource, "catalog", os.Getenv("CATALOG_SOURCE"), "Item catalog file or URL")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(searchCmd)
}
