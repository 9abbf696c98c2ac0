// Package pipeline runs the fetch, normalize, classify and venue extraction
// stages over configured feed categories.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matsen/dailypaper/internal/classify"
	"github.com/matsen/dailypaper/internal/feed"
	"github.com/matsen/dailypaper/internal/logging"
	"github.com/matsen/dailypaper/internal/normalize"
	"github.com/matsen/dailypaper/internal/paper"
	"github.com/matsen/dailypaper/internal/venue"
	"github.com/rs/zerolog"
)

// RunConfig selects what one run fetches.
type RunConfig struct {
	Categories []string
	Limit      int           // max records requested per category
	Window     time.Duration // lookback from now; records older than now-Window are dropped
}

// CategoryResult records the outcome of one category.
type CategoryResult struct {
	Category string `json:"category"`
	Fetched  int    `json:"fetched"` // records returned by the feed
	Kept     int    `json:"kept"`    // records inside the window
	Error    string `json:"error,omitempty"`
}

// Pipeline turns feed records into enriched papers.
type Pipeline struct {
	source     feed.Source
	classifier *classify.Classifier
	extractor  *venue.Extractor
	now        func() time.Time
	logger     zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock the time window is measured against.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline over a feed source and the enrichment stages.
func New(source feed.Source, classifier *classify.Classifier, extractor *venue.Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:     source,
		classifier: classifier,
		extractor:  extractor,
		now:        time.Now,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches every category in order and returns the enriched papers,
// concatenated in category order. Duplicates across categories are kept.
//
// A failing category is logged and skipped. Only cancellation of ctx stops the
// run early; the papers gathered so far are returned with ctx's error.
func (p *Pipeline) Run(ctx context.Context, cfg RunConfig) ([]paper.Paper, error) {
	papers, _, err := p.RunDetailed(ctx, cfg)
	return papers, err
}

// RunDetailed is Run that also reports per-category outcomes.
func (p *Pipeline) RunDetailed(ctx context.Context, cfg RunConfig) ([]paper.Paper, []CategoryResult, error) {
	now := p.now()
	cutoff := now.Add(-cfg.Window)

	var all []paper.Paper
	results := make([]CategoryResult, 0, len(cfg.Categories))

	for _, category := range cfg.Categories {
		if err := ctx.Err(); err != nil {
			return all, results, err
		}

		logger := logging.WithCategory(p.logger, p.source.Name(), category)
		logger.Info().Int("limit", cfg.Limit).Msg("fetching category")

		res := CategoryResult{Category: category}
		records, err := p.source.Fetch(ctx, feed.Query{
			Category:   category,
			MaxResults: cfg.Limit,
			Order:      feed.MostRecentFirst,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return all, results, ctxErr
			}
			logger.Error().Err(err).Msg("fetch failed, skipping category")
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		res.Fetched = len(records)

		for _, r := range records {
			if !InWindow(r.EffectiveTime(), cutoff, now) {
				continue
			}
			all = append(all, p.Enrich(normalize.Record(r, p.source.Name(), category)))
			res.Kept++
		}

		logger.Info().
			Int("fetched", res.Fetched).
			Int("kept", res.Kept).
			Msg("category done")
		results = append(results, res)
	}

	p.logger.Info().
		Int("categories", len(cfg.Categories)).
		Int("total", len(all)).
		Msg("fetch complete")

	return all, results, nil
}

// Enrich fills the derived fields of a normalized paper.
func (p *Pipeline) Enrich(pp paper.Paper) paper.Paper {
	pp.Tags = p.classifier.Classify(pp)
	pp.Conference = p.extractor.ExtractPtr(pp.Comment)
	return pp
}

// InWindow reports whether t lies in [from, to]. Both bounds are inclusive.
func InWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// ValidateRunConfig rejects configurations that cannot produce a sensible run.
func ValidateRunConfig(cfg RunConfig) error {
	if len(cfg.Categories) == 0 {
		return errors.New("no categories to fetch")
	}
	if cfg.Limit <= 0 {
		return fmt.Errorf("per-category limit must be positive, got %d", cfg.Limit)
	}
	if cfg.Window < 0 {
		return fmt.Errorf("time window must not be negative, got %s", cfg.Window)
	}
	return nil
}
