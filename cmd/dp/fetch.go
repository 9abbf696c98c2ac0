package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matsen/dailypaper/internal/classify"
	"github.com/matsen/dailypaper/internal/config"
	"github.com/matsen/dailypaper/internal/feed"
	"github.com/matsen/dailypaper/internal/feed/arxiv"
	"github.com/matsen/dailypaper/internal/logging"
	"github.com/matsen/dailypaper/internal/paper"
	"github.com/matsen/dailypaper/internal/pipeline"
	"github.com/matsen/dailypaper/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	fetchDryRun     bool
	fetchCategories []string
	fetchLimit      int
	fetchDaysBack   int
)

func init() {
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "Print enriched papers without touching the corpus")
	fetchCmd.Flags().StringSliceVar(&fetchCategories, "category", nil, "Override the configured categories (repeatable)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "Override max_results per category")
	fetchCmd.Flags().IntVar(&fetchDaysBack, "days-back", -1, "Override the lookback window in days")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch, tag and merge new papers into the corpus",
	Long: `Fetch recent papers for every enabled source, tag them by keyword,
extract venues from comments, and merge them into data/papers.jsonl.

Papers already in the corpus are skipped by ID. Papers published today are
also written to data/papers_YYYY-MM-DD.jsonl. A failing category is logged
and skipped; the rest of the run continues.

Examples:
  dp fetch
  dp fetch --category cs.CV --limit 20 --days-back 3
  dp fetch --dry-run --human`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

// FetchResult is the response for the fetch command.
type FetchResult struct {
	RunID      string                    `json:"run_id"`
	DryRun     bool                      `json:"dry_run"`
	Categories []pipeline.CategoryResult `json:"categories"`
	Fetched    int                       `json:"fetched"`
	Merge      *storage.MergeResult      `json:"merge,omitempty"`
	Indexed    int                       `json:"indexed"`
	Papers     []paper.Paper             `json:"papers,omitempty"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	now := time.Now()
	runID := logging.NewRunID(now)
	logger := logging.WithRun(newLogger(cfg), runID)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sourceNames, err := cfg.EnabledSources()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	extractor, err := cfg.VenueExtractor()
	if err != nil {
		exitWithError(ExitConfigError, "venue tables: %v", err)
	}
	classifier := classify.New(cfg.Keywords())

	result := FetchResult{RunID: runID, DryRun: fetchDryRun, Categories: []pipeline.CategoryResult{}}
	var fetched []paper.Paper

	for _, name := range sourceNames {
		src, err := newSource(name, cfg)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		runCfg := fetchRunConfig(cfg.Sources[name])
		if err := pipeline.ValidateRunConfig(runCfg); err != nil {
			exitWithError(ExitConfigError, "sources.%s: %v", name, err)
		}

		p := pipeline.New(src, classifier, extractor,
			pipeline.WithClock(func() time.Time { return now }),
			pipeline.WithLogger(logger),
		)
		papers, categories, err := p.RunDetailed(ctx, runCfg)
		fetched = append(fetched, papers...)
		result.Categories = append(result.Categories, categories...)
		if err != nil {
			exitWithError(ExitError, "fetch interrupted after %d papers: %v", len(fetched), err)
		}
	}
	result.Fetched = len(fetched)

	if len(fetched) == 0 {
		logger.Warn().Msg("no papers fetched; check categories, days_back and network access")
	}

	if fetchDryRun {
		result.Papers = fetched
		printFetchResult(result)
		return nil
	}

	merge, err := mergeAndIndex(ctx, cfg, logger, fetched, &result)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	result.Merge = merge

	printFetchResult(result)
	return nil
}

// fetchRunConfig applies command-line overrides to a source's settings.
func fetchRunConfig(src config.SourceConfig) pipeline.RunConfig {
	rc := pipeline.RunConfig{
		Categories: src.Categories,
		Limit:      src.MaxResults,
		Window:     src.Window(),
	}
	if len(fetchCategories) > 0 {
		rc.Categories = fetchCategories
	}
	if fetchLimit > 0 {
		rc.Limit = fetchLimit
	}
	if fetchDaysBack >= 0 {
		rc.Window = time.Duration(fetchDaysBack) * 24 * time.Hour
	}
	return rc
}

// mergeAndIndex persists the batch and refreshes the query index. An index
// failure is logged but does not fail the run: the corpus is already safe.
func mergeAndIndex(ctx context.Context, cfg *config.Config, logger zerolog.Logger, papers []paper.Paper, result *FetchResult) (*storage.MergeResult, error) {
	merge, err := newCorpus(cfg, logger).MergeAndPersist(ctx, papers)
	if err != nil {
		return nil, fmt.Errorf("merging into corpus: %w", err)
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(config.CachePath(dataDir), 0755); err != nil {
		logger.Warn().Err(err).Msg("creating cache directory; run 'dp rebuild' later")
		return merge, nil
	}
	db, err := storage.OpenDB(config.DBPath(dataDir))
	if err != nil {
		logger.Warn().Err(err).Msg("opening index; run 'dp rebuild' later")
		return merge, nil
	}
	defer db.Close()

	n, err := db.Rebuild(merge.Papers)
	if err != nil {
		logger.Warn().Err(err).Msg("rebuilding index; run 'dp rebuild' later")
		return merge, nil
	}
	result.Indexed = n
	return merge, nil
}

// newSource builds the feed client for a configured source name.
func newSource(name string, cfg *config.Config) (feed.Source, error) {
	switch name {
	case config.SourceArXiv:
		opts := []arxiv.ClientOption{
			arxiv.WithTimeout(cfg.FeedTimeout()),
			arxiv.WithRateLimit(cfg.FeedRateLimit(), 1),
			arxiv.WithRetries(cfg.FeedMaxRetries(), arxiv.DefaultRetryDelay),
		}
		if cfg.Feed.BaseURL != "" {
			opts = append(opts, arxiv.WithBaseURL(cfg.Feed.BaseURL))
		}
		return arxiv.NewClient(opts...), nil
	default:
		return nil, fmt.Errorf("sources.%s: unsupported source (only %q is implemented)", name, config.SourceArXiv)
	}
}

func printFetchResult(r FetchResult) {
	if !humanOutput {
		outputJSON(r)
		return
	}

	for _, c := range r.Categories {
		if c.Error != "" {
			fmt.Printf("  %-10s failed: %s\n", c.Category, c.Error)
			continue
		}
		fmt.Printf("  %-10s %d fetched, %d in window\n", c.Category, c.Fetched, c.Kept)
	}
	fmt.Printf("Total: %d papers\n", r.Fetched)

	if r.DryRun {
		fmt.Println()
		printPaperList(r.Papers)
		return
	}
	if r.Merge == nil {
		return
	}
	fmt.Printf("Added %d new papers (%d duplicates); corpus now has %d\n",
		r.Merge.Added, r.Merge.Duplicates, r.Merge.Total)
	if r.Merge.SnapshotPath != "" {
		fmt.Printf("Today's papers (%d) written to %s\n", r.Merge.SnapshotCount, r.Merge.SnapshotPath)
	}
	if r.Merge.SnapshotError != "" {
		fmt.Printf("warning: daily snapshot not written: %s\n", r.Merge.SnapshotError)
	}
}
