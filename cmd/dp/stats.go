package main

import (
	"fmt"

	"github.com/matsen/dailypaper/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count corpus papers by tag and publication status",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// StatsResult is the response for the stats command.
type StatsResult struct {
	Total     int                `json:"total"`
	Published int                `json:"published"`
	Preprints int                `json:"preprints"`
	Untagged  int                `json:"untagged"`
	Tags      []storage.TagCount `json:"tags"`
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg.DataDir())
	defer db.Close()

	total, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting papers: %v", err)
	}
	published, err := db.CountPublished()
	if err != nil {
		exitWithError(ExitError, "counting published papers: %v", err)
	}
	tags, err := db.TagCounts()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if tags == nil {
		tags = []storage.TagCount{}
	}
	untagged, err := db.CountUntagged()
	if err != nil {
		exitWithError(ExitError, "counting untagged papers: %v", err)
	}

	res := StatsResult{
		Total:     total,
		Published: published,
		Preprints: total - published,
		Untagged:  untagged,
		Tags:      tags,
	}

	if !humanOutput {
		outputJSON(res)
		return nil
	}

	fmt.Printf("Papers:     %d\n", res.Total)
	fmt.Printf("Published:  %d\n", res.Published)
	fmt.Printf("Preprints:  %d\n", res.Preprints)
	fmt.Println()
	for _, tc := range res.Tags {
		fmt.Printf("  %-32s %d\n", tc.Tag, tc.Count)
	}
	fmt.Printf("  %-32s %d\n", "(untagged)", res.Untagged)
	return nil
}
