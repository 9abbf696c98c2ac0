// Package main provides the dp CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/matsen/dailypaper/internal/config"
	"github.com/matsen/dailypaper/internal/logging"
	"github.com/matsen/dailypaper/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	// configPath is the --config flag; empty means DP_CONFIG or ./config.yaml
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dp",
	Short: "Daily paper digest: fetch, tag and store new arXiv papers",
	Long: `dp fetches recent arXiv papers for configured categories, tags them by
keyword, extracts publication venues from author comments, and keeps a
deduplicated corpus sorted newest first.

The corpus is a JSONL file (data/papers.jsonl) with an ephemeral SQLite index
for queries. All commands output JSON by default; use --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// DP_CONFIG, DP_LOG_LEVEL and DP_DATA_DIR may live in .env
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default $DP_CONFIG or ./config.yaml)")
	rootCmd.Version = Version
}

// mustLoadConfig loads and validates configuration, exits on error.
func mustLoadConfig() *config.Config {
	path := config.ResolvePath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitConfigError, "loading config: %s not found\n\nRun 'dp init' to create one.", path)
		}
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	cfg.ApplyEnv()
	return cfg
}

// newLogger builds the stderr logger described by the config.
func newLogger(cfg *config.Config) zerolog.Logger {
	lc := logging.DefaultConfig()
	if cfg.Logging.Level != "" {
		lc.Level = cfg.Logging.Level
	}
	if cfg.Logging.Format != "" {
		lc.Format = cfg.Logging.Format
	}
	return logging.New(lc, os.Stderr)
}

// mustOpenDatabase opens the query index, building it from the corpus when it
// does not exist yet. The caller is responsible for calling Close().
func mustOpenDatabase(dataDir string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(dataDir), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	dbPath := config.DBPath(dataDir)
	_, statErr := os.Stat(dbPath)

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}

	if os.IsNotExist(statErr) {
		if _, err := db.RebuildFromJSONL(config.CorpusPath(dataDir)); err != nil {
			db.Close()
			exitWithError(ExitDataError, "building index: %v", err)
		}
	}
	return db
}

// newCorpus returns the corpus store for the configured data directory.
func newCorpus(cfg *config.Config, logger zerolog.Logger) *storage.Corpus {
	return storage.NewCorpus(cfg.DataDir(),
		storage.WithClock(time.Now),
		storage.WithLogger(logger),
	)
}
