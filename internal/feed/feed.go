// Package feed defines the contract between the ingestion pipeline and paper feeds.
package feed

import (
	"context"
	"time"
)

// SortOrder controls result ordering requested from a feed.
type SortOrder string

const (
	// MostRecentFirst orders records by submission date, newest first.
	MostRecentFirst SortOrder = "most_recent_first"
)

// Query describes one category fetch.
type Query struct {
	// Category is a feed taxonomy code such as "cs.CV".
	Category string

	// MaxResults caps the number of records returned.
	MaxResults int

	// Order is the requested result ordering.
	Order SortOrder
}

// Record is a raw paper record as yielded by a feed.
type Record struct {
	// EntryID is the canonical resource identifier ("http://arxiv.org/abs/2501.01234v1").
	EntryID string

	Title   string
	Authors []string
	Summary string

	// Published is the first submission time. Updated is zero when the feed gives none.
	Published time.Time
	Updated   time.Time

	Categories      []string
	PrimaryCategory string

	PDFURL       string
	CanonicalURL string

	// Comment is the submitter's annotation; nil when the feed has none.
	Comment *string
}

// EffectiveTime is Updated when present, else Published.
func (r Record) EffectiveTime() time.Time {
	if !r.Updated.IsZero() {
		return r.Updated
	}
	return r.Published
}

// Source yields raw records for a category.
type Source interface {
	// Name is the human-readable feed name, used for provenance and logging.
	Name() string

	// Fetch returns at most q.MaxResults records for q.Category.
	Fetch(ctx context.Context, q Query) ([]Record, error)
}
