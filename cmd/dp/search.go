package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultListLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over titles, abstracts and authors",
	Long: `Full-text search over titles, abstracts and authors, newest first.

Queries use SQLite FTS5 syntax for plain words; anything containing
punctuation is searched as a literal phrase.

Examples:
  dp search segmentation
  dp search "diffusion policy" --limit 10 --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg.DataDir())
	defer db.Close()

	papers, err := db.Search(strings.Join(args, " "), searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	printPapers(papers, false)
	return nil
}
