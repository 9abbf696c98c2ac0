package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/matsen/dailypaper/internal/config"
	"github.com/matsen/dailypaper/internal/paper"
	"github.com/rs/zerolog"
)

// DefaultLockRetry is the interval between attempts to take the corpus lock.
const DefaultLockRetry = 100 * time.Millisecond

// corruptTimeLayout names moved-aside corpus files.
const corruptTimeLayout = "20060102T150405Z"

// Corpus is the persisted, deduplicated paper corpus in a data directory.
// Every read-merge-write sequence runs under an advisory file lock, so two
// processes sharing a data directory cannot lose each other's updates.
type Corpus struct {
	dataDir   string
	now       func() time.Time
	logger    zerolog.Logger
	lockRetry time.Duration
}

// CorpusOption configures a Corpus.
type CorpusOption func(*Corpus)

// WithClock sets the clock used to pick the snapshot date.
func WithClock(now func() time.Time) CorpusOption {
	return func(c *Corpus) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) CorpusOption {
	return func(c *Corpus) {
		c.logger = logger
	}
}

// WithLockRetry sets the lock polling interval.
func WithLockRetry(d time.Duration) CorpusOption {
	return func(c *Corpus) {
		if d > 0 {
			c.lockRetry = d
		}
	}
}

// NewCorpus returns the corpus stored in dataDir.
func NewCorpus(dataDir string, opts ...CorpusOption) *Corpus {
	c := &Corpus{
		dataDir:   dataDir,
		now:       time.Now,
		logger:    zerolog.Nop(),
		lockRetry: DefaultLockRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the corpus JSONL path.
func (c *Corpus) Path() string {
	return config.CorpusPath(c.dataDir)
}

// Load reads the corpus without taking the lock. A missing, unreadable or
// malformed file yields an empty corpus.
func (c *Corpus) Load() []paper.Paper {
	papers, err := ReadAll(c.Path())
	if err != nil {
		c.logger.Warn().Err(err).Str("path", c.Path()).Msg("corpus unreadable, treating as empty")
		return nil
	}
	return papers
}

// MergeResult reports what MergeAndPersist did.
type MergeResult struct {
	Fetched    int `json:"fetched"`
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Total      int `json:"total"`

	// Snapshot of the batch's papers published today; empty path when none.
	SnapshotPath  string `json:"snapshot_path,omitempty"`
	SnapshotCount int    `json:"snapshot_count"`
	SnapshotError string `json:"snapshot_error,omitempty"`

	Papers []paper.Paper `json:"-"`
}

// MergeAndPersist merges newPapers into the stored corpus and rewrites it.
//
// The corpus write is atomic. Papers from the batch published today are then
// written to the day's snapshot file; that write is independent of the corpus
// write and its failure is reported in the result rather than returned.
func (c *Corpus) MergeAndPersist(ctx context.Context, newPapers []paper.Paper) (*MergeResult, error) {
	result := &MergeResult{Fetched: len(newPapers)}

	err := c.Update(ctx, func(existing []paper.Paper) ([]paper.Paper, error) {
		merged, added := Merge(newPapers, existing)
		result.Added = len(added)
		result.Duplicates = len(newPapers) - len(added)
		result.Total = len(merged)
		result.Papers = merged
		return merged, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("fetched", result.Fetched).
		Int("added", result.Added).
		Int("duplicates", result.Duplicates).
		Int("total", result.Total).
		Msg("corpus updated")

	today := paper.DateOf(c.now().UTC())
	todays := PublishedOn(newPapers, today)
	if len(todays) == 0 {
		return result, nil
	}

	path := config.SnapshotPath(c.dataDir, today.String())
	if err := WriteAll(path, todays); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("writing daily snapshot")
		result.SnapshotError = err.Error()
		return result, nil
	}
	result.SnapshotPath = path
	result.SnapshotCount = len(todays)
	c.logger.Info().Str("path", path).Int("count", len(todays)).Msg("daily snapshot written")

	return result, nil
}

// Update runs fn over the stored corpus under the lock and atomically replaces
// the corpus with fn's result, sorted newest first. When fn returns an error
// nothing is written.
func (c *Corpus) Update(ctx context.Context, fn func(existing []paper.Paper) ([]paper.Paper, error)) error {
	if err := os.MkdirAll(c.dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	return c.withLock(ctx, func() error {
		existing, err := ReadAll(c.Path())
		if err != nil {
			c.quarantine(err)
			existing = nil
		}

		updated, err := fn(existing)
		if err != nil {
			return err
		}
		SortByPublished(updated)

		if err := WriteAll(c.Path(), updated); err != nil {
			return fmt.Errorf("writing corpus: %w", err)
		}
		return nil
	})
}

// quarantine moves an unreadable corpus aside so the next write does not
// destroy it.
func (c *Corpus) quarantine(readErr error) {
	path := c.Path()
	dest := path + ".corrupt-" + c.now().UTC().Format(corruptTimeLayout)

	logger := c.logger.Warn().Err(readErr).Str("path", path)
	if err := os.Rename(path, dest); err != nil {
		logger.AnErr("rename_error", err).Msg("corpus unreadable, starting from empty corpus")
		return
	}
	logger.Str("moved_to", dest).Msg("corpus unreadable, moved aside and starting from empty corpus")
}

func (c *Corpus) withLock(ctx context.Context, fn func() error) error {
	lock := flock.New(config.LockPath(c.dataDir))

	locked, err := lock.TryLockContext(ctx, c.lockRetry)
	if err != nil {
		return fmt.Errorf("acquiring corpus lock: %w", err)
	}
	if !locked {
		return errors.New("acquiring corpus lock: not acquired")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn().Err(err).Msg("releasing corpus lock")
		}
	}()

	return fn()
}
