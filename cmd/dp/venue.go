package main

import (
	"fmt"

	"github.com/matsen/dailypaper/internal/config"
	"github.com/matsen/dailypaper/internal/paper"
	"github.com/matsen/dailypaper/internal/storage"
	"github.com/matsen/dailypaper/internal/venue"
	"github.com/spf13/cobra"
)

var venueTop int

func init() {
	venueCmd.Flags().IntVar(&venueTop, "top", venue.DefaultTopVenues, "Number of venues to rank")
	rootCmd.AddCommand(venueCmd)
}

var venueCmd = &cobra.Command{
	Use:   "venue",
	Short: "Re-extract venues for every corpus paper",
	Long: `Re-extract the venue of every corpus paper from its comment using the
current venue tables, and rewrite the corpus.

Papers whose comment yields no venue keep their current value. Run this after
editing venues.conferences or venues.journals in config.yaml.`,
	Args: cobra.NoArgs,
	RunE: runVenue,
}

func runVenue(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	extractor, err := cfg.VenueExtractor()
	if err != nil {
		exitWithError(ExitConfigError, "venue tables: %v", err)
	}

	var summary venue.Summary
	var updated []paper.Paper
	err = newCorpus(cfg, logger).Update(cmd.Context(), func(existing []paper.Paper) ([]paper.Paper, error) {
		summary = venue.Recompute(existing, extractor, venueTop)
		updated = existing
		return existing, nil
	})
	if err != nil {
		exitWithError(ExitDataError, "updating corpus: %v", err)
	}

	if db, err := storage.OpenDB(config.DBPath(cfg.DataDir())); err == nil {
		if _, err := db.Rebuild(updated); err != nil {
			logger.Warn().Err(err).Msg("rebuilding index; run 'dp rebuild' later")
		}
		db.Close()
	}

	if !humanOutput {
		outputJSON(summary)
		return nil
	}

	fmt.Printf("Papers:       %d\n", summary.Total)
	fmt.Printf("With venue:   %d\n", summary.WithVenue)
	fmt.Printf("Preprints:    %d\n", summary.Preprints)
	fmt.Printf("Changed:      %d\n", summary.Changed)
	if len(summary.Top) > 0 {
		fmt.Println()
		fmt.Println("Top venues:")
		for _, vc := range summary.Top {
			fmt.Printf("  %-12s %d\n", vc.Venue, vc.Count)
		}
	}
	return nil
}
