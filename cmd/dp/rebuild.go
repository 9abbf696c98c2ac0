package main

import (
	"fmt"
	"os"

	"github.com/matsen/dailypaper/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query index from the corpus",
	Long: `Rebuild the SQLite query index from data/papers.jsonl.

Use this after editing or restoring the corpus by hand, or if the index
becomes corrupted. The index lives in data/cache/ and is safe to delete.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Papers int    `json:"papers"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	dataDir := cfg.DataDir()

	if err := os.MkdirAll(config.CachePath(dataDir), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db := mustOpenDatabase(dataDir)
	defer db.Close()

	count, err := db.RebuildFromJSONL(config.CorpusPath(dataDir))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query index with %d papers\n", count)
	} else {
		outputJSON(RebuildResult{
			Status: "rebuilt",
			Papers: count,
		})
	}

	return nil
}
