package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/dailypaper/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Load and validate config.yaml, then print the settings a fetch would use,
with defaults and environment overrides applied.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Path       string                    `json:"path"`
	DataDir    string                    `json:"data_dir"`
	Sources    map[string]SourceResponse `json:"sources"`
	Categories map[string][]string       `json:"categories"`
	Venues     config.VenueConfig        `json:"venues"`
	Feed       FeedResponse              `json:"feed"`
	Logging    config.LoggingConfig      `json:"logging"`
}

// SourceResponse is one source with its effective window.
type SourceResponse struct {
	Enabled    bool     `json:"enabled"`
	Categories []string `json:"categories"`
	MaxResults int      `json:"max_results"`
	WindowDays float64  `json:"window_days"`
}

// FeedResponse holds the effective feed client settings.
type FeedResponse struct {
	BaseURL    string  `json:"base_url,omitempty"`
	Timeout    string  `json:"timeout"`
	RateLimit  float64 `json:"rate_limit"`
	MaxRetries int     `json:"max_retries"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	res := effectiveConfig(cfg)

	if !humanOutput {
		outputJSON(res)
		return nil
	}

	fmt.Printf("config:    %s\n", res.Path)
	fmt.Printf("data-dir:  %s\n", res.DataDir)
	fmt.Printf("feed:      timeout %s, %.2f req/s, %d retries\n", res.Feed.Timeout, res.Feed.RateLimit, res.Feed.MaxRetries)

	for _, name := range sortedKeys(res.Sources) {
		src := res.Sources[name]
		state := "disabled"
		if src.Enabled {
			state = "enabled"
		}
		fmt.Printf("\nsource %s (%s)\n", name, state)
		fmt.Printf("  categories:  %s\n", strings.Join(src.Categories, ", "))
		fmt.Printf("  max-results: %d\n", src.MaxResults)
		fmt.Printf("  window:      %g days\n", src.WindowDays)
	}

	fmt.Println("\nclassification:")
	for _, name := range sortedKeys(res.Categories) {
		fmt.Printf("  %s: %s\n", name, strings.Join(res.Categories[name], ", "))
	}
	return nil
}

func effectiveConfig(cfg *config.Config) ConfigResponse {
	res := ConfigResponse{
		Path:       cfg.Path(),
		DataDir:    cfg.DataDir(),
		Sources:    make(map[string]SourceResponse, len(cfg.Sources)),
		Categories: cfg.Keywords(),
		Venues:     cfg.Venues,
		Feed: FeedResponse{
			BaseURL:    cfg.Feed.BaseURL,
			Timeout:    cfg.FeedTimeout().String(),
			RateLimit:  cfg.FeedRateLimit(),
			MaxRetries: cfg.FeedMaxRetries(),
		},
		Logging: cfg.Logging,
	}
	for name, src := range cfg.Sources {
		res.Sources[name] = SourceResponse{
			Enabled:    src.Enabled,
			Categories: src.Categories,
			MaxResults: src.MaxResults,
			WindowDays: src.Window().Hours() / 24,
		}
	}
	return res
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
