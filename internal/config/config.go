// Package config handles pipeline configuration and data directory layout.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML document driving a fetch run (config.yaml).
type Config struct {
	Sources    map[string]SourceConfig   `yaml:"sources"`
	Categories map[string]CategoryConfig `yaml:"categories"`
	Venues     VenueConfig               `yaml:"venues,omitempty"`
	Output     OutputConfig              `yaml:"output,omitempty"`
	Feed       FeedConfig                `yaml:"feed,omitempty"`
	Logging    LoggingConfig             `yaml:"logging,omitempty"`

	// path is the file the config was loaded from; relative paths resolve against its directory.
	path string
}

// SourceConfig configures one feed.
type SourceConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Categories []string `yaml:"categories"`
	MaxResults int      `yaml:"max_results"`
	DaysBack   *int     `yaml:"days_back,omitempty"` // nil means DefaultDaysBack
}

// CategoryConfig lists the keywords that assign a classification tag.
type CategoryConfig struct {
	Keywords []string `yaml:"keywords"`
}

// VenueConfig holds the venue extraction tables. Empty lists fall back to the
// built-in tables.
type VenueConfig struct {
	Conferences []string `yaml:"conferences,omitempty"`
	Journals    []string `yaml:"journals,omitempty"`
}

// OutputConfig controls where the corpus lives.
type OutputConfig struct {
	DataDir string `yaml:"data_dir,omitempty"`
}

// FeedConfig tunes the HTTP client used for feeds.
type FeedConfig struct {
	BaseURL    string        `yaml:"base_url,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	RateLimit  float64       `yaml:"rate_limit,omitempty"` // requests per second
	MaxRetries *int          `yaml:"max_retries,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

const (
	// DefaultConfigFile is the config file looked up when none is given.
	DefaultConfigFile = "config.yaml"

	// DefaultDataDir is the data directory, relative to the config file.
	DefaultDataDir = "data"

	// DefaultDaysBack is the lookback window when days_back is omitted.
	DefaultDaysBack = 1

	// DefaultFeedTimeout is the HTTP timeout when feed.timeout is omitted.
	DefaultFeedTimeout = 30 * time.Second

	// DefaultRateLimit is arXiv's one request every three seconds.
	DefaultRateLimit = 1.0 / 3.0

	// DefaultMaxRetries is the retry count when feed.max_retries is omitted.
	DefaultMaxRetries = 3
)

// SourceArXiv is the only feed implemented.
const SourceArXiv = "arxiv"

// ErrNoEnabledSources is returned by EnabledSources when every source is disabled.
var ErrNoEnabledSources = errors.New("no enabled sources in config")

// Load reads and validates configuration from path.
// A missing or unparseable file is an error: a run cannot proceed without it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.path = abs

	return cfg, nil
}

// Parse decodes and validates a YAML config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that enabled sources are usable.
func (c *Config) Validate() error {
	for name, src := range c.Sources {
		if src.DaysBack != nil && *src.DaysBack < 0 {
			return fmt.Errorf("sources.%s.days_back must not be negative", name)
		}
		if !src.Enabled {
			continue
		}
		if len(src.Categories) == 0 {
			return fmt.Errorf("sources.%s: enabled source has no categories", name)
		}
		if src.MaxResults <= 0 {
			return fmt.Errorf("sources.%s.max_results must be positive", name)
		}
		for _, cat := range src.Categories {
			if strings.TrimSpace(cat) == "" {
				return fmt.Errorf("sources.%s: empty category", name)
			}
		}
	}
	if c.Feed.Timeout < 0 {
		return errors.New("feed.timeout must not be negative")
	}
	if c.Feed.RateLimit < 0 {
		return errors.New("feed.rate_limit must not be negative")
	}
	return nil
}

// Path returns the absolute path the config was loaded from, or "" when parsed from bytes.
func (c *Config) Path() string {
	return c.path
}

// EnabledSources returns the names of enabled sources in sorted order.
func (c *Config) EnabledSources() ([]string, error) {
	var names []string
	for name, src := range c.Sources {
		if src.Enabled {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoEnabledSources
	}
	sort.Strings(names)
	return names, nil
}

// Keywords returns the classification mapping. Missing categories yield an empty map.
func (c *Config) Keywords() map[string][]string {
	out := make(map[string][]string, len(c.Categories))
	for name, cat := range c.Categories {
		out[name] = append([]string(nil), cat.Keywords...)
	}
	return out
}

// Window returns the lookback window of a source.
func (s SourceConfig) Window() time.Duration {
	days := DefaultDaysBack
	if s.DaysBack != nil {
		days = *s.DaysBack
	}
	return time.Duration(days) * 24 * time.Hour
}

// DataDir returns the absolute data directory. Relative data_dir values resolve
// against the config file's directory.
func (c *Config) DataDir() string {
	dir := c.Output.DataDir
	if dir == "" {
		dir = DefaultDataDir
	}
	dir = ExpandPath(dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	base := "."
	if c.path != "" {
		base = filepath.Dir(c.path)
	}
	return filepath.Join(base, dir)
}

// FeedTimeout returns feed.timeout or its default.
func (c *Config) FeedTimeout() time.Duration {
	if c.Feed.Timeout > 0 {
		return c.Feed.Timeout
	}
	return DefaultFeedTimeout
}

// FeedRateLimit returns feed.rate_limit or its default.
func (c *Config) FeedRateLimit() float64 {
	if c.Feed.RateLimit > 0 {
		return c.Feed.RateLimit
	}
	return DefaultRateLimit
}

// FeedMaxRetries returns feed.max_retries or its default.
func (c *Config) FeedMaxRetries() int {
	if c.Feed.MaxRetries != nil && *c.Feed.MaxRetries >= 0 {
		return *c.Feed.MaxRetries
	}
	return DefaultMaxRetries
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
