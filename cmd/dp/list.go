package main

import (
	"github.com/matsen/dailypaper/internal/paper"
	"github.com/matsen/dailypaper/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listTag    string
	listDate   string
	listStatus string
	listLimit  int
	listJSONL  bool
)

func init() {
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only papers with this classification tag")
	listCmd.Flags().StringVar(&listDate, "date", "", "Only papers published on this date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only 'published' (venue known) or 'preprint' papers")
	listCmd.Flags().IntVar(&listLimit, "limit", DefaultListLimit, "Maximum results to return (0 for all)")
	listCmd.Flags().BoolVar(&listJSONL, "jsonl", false, "Output one compact JSON paper per line")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus papers, newest first",
	Long: `List corpus papers, newest first, optionally filtered.

Examples:
  dp list --tag "Computer Vision"
  dp list --date 2025-06-03 --human
  dp list --status published --limit 0 --jsonl`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	filters := storage.ListFilters{Tag: listTag, Limit: listLimit}

	if listDate != "" {
		d, err := paper.ParseDate(listDate)
		if err != nil {
			exitWithError(ExitError, "--date: %v", err)
		}
		filters.Date = d
	}

	status, err := storage.ParseStatus(listStatus)
	if err != nil {
		exitWithError(ExitError, "--status: %v", err)
	}
	filters.Status = status

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg.DataDir())
	defer db.Close()

	papers, err := db.List(filters)
	if err != nil {
		exitWithError(ExitError, "listing papers: %v", err)
	}

	printPapers(papers, listJSONL)
	return nil
}

// printPapers writes papers in the selected output format.
func printPapers(papers []paper.Paper, jsonl bool) {
	switch {
	case humanOutput:
		printPaperList(papers)
	case jsonl:
		outputJSONLines(papers)
	default:
		if papers == nil {
			papers = []paper.Paper{}
		}
		outputJSON(papers)
	}
}
