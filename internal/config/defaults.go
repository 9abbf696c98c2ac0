package config

import (
	"os"
	"strings"

	"github.com/matsen/dailypaper/internal/venue"
)

// Environment variables consulted by the CLI.
const (
	EnvConfig   = "DP_CONFIG"
	EnvLogLevel = "DP_LOG_LEVEL"
	EnvDataDir  = "DP_DATA_DIR"
)

// ResolvePath picks the config file: an explicit flag wins, then DP_CONFIG,
// then config.yaml in the working directory.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return ExpandPath(flagValue)
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfig)); env != "" {
		return ExpandPath(env)
	}
	return DefaultConfigFile
}

// ApplyEnv overlays environment overrides onto a loaded config.
func (c *Config) ApplyEnv() {
	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		c.Logging.Level = lvl
	}
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		c.Output.DataDir = dir
	}
}

// DefaultConfig returns the starter configuration written by dp init.
func DefaultConfig() *Config {
	daysBack := DefaultDaysBack
	retries := DefaultMaxRetries
	return &Config{
		Sources: map[string]SourceConfig{
			SourceArXiv: {
				Enabled:    true,
				Categories: []string{"cs.CV", "cs.CL", "cs.LG", "cs.AI", "cs.RO"},
				MaxResults: 100,
				DaysBack:   &daysBack,
			},
		},
		Categories: map[string]CategoryConfig{
			"Computer Vision": {Keywords: []string{
				"image", "vision", "visual", "detection", "segmentation", "video",
			}},
			"Natural Language Processing": {Keywords: []string{
				"language model", "nlp", "text", "translation", "llm",
			}},
			"Machine Learning": {Keywords: []string{
				"learning", "neural network", "optimization", "training",
			}},
			"Robotics": {Keywords: []string{
				"robot", "manipulation", "locomotion", "navigation",
			}},
			"Multimodal": {Keywords: []string{
				"multimodal", "vision-language", "image-text", "cross-modal",
			}},
		},
		Venues: VenueConfig{
			Conferences: append([]string(nil), venue.DefaultConferences...),
			Journals:    append([]string(nil), venue.DefaultJournals...),
		},
		Output: OutputConfig{DataDir: DefaultDataDir},
		Feed: FeedConfig{
			Timeout:    DefaultFeedTimeout,
			RateLimit:  DefaultRateLimit,
			MaxRetries: &retries,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// VenueExtractor compiles the configured venue tables. An empty conference or
// journal list falls back to the built-in table.
func (c *Config) VenueExtractor() (*venue.Extractor, error) {
	conferences := c.Venues.Conferences
	if len(conferences) == 0 {
		conferences = venue.DefaultConferences
	}
	journals := c.Venues.Journals
	if len(journals) == 0 {
		journals = venue.DefaultJournals
	}
	return venue.New(conferences, journals)
}
