package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a single paper by ID",
	Long: `Get a single paper by its arXiv ID (including version suffix).

Example:
  dp get 2506.01234v2 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg.DataDir())
	defer db.Close()

	id := args[0]
	p, err := db.GetByID(id)
	if err != nil {
		exitWithError(ExitError, "getting paper: %v", err)
	}

	if p == nil {
		exitWithError(ExitNotFound, "paper not found: %s", id)
	}

	if humanOutput {
		printPaperDetail(*p)
	} else {
		outputJSON(p)
	}

	return nil
}
