package storage

import (
	"slices"

	"github.com/matsen/dailypaper/internal/paper"
)

// Merge combines a fetched batch with the existing corpus.
//
// Incoming papers whose ID is already present are dropped; the existing record
// wins unchanged. Duplicates inside incoming collapse to the first occurrence.
// Survivors are placed ahead of existing papers and the result is stably sorted
// by published date, newest first. added holds the survivors in input order.
func Merge(incoming, existing []paper.Paper) (merged, added []paper.Paper) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, p := range existing {
		seen[p.ID] = struct{}{}
	}

	for _, p := range incoming {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		added = append(added, p)
	}

	merged = make([]paper.Paper, 0, len(added)+len(existing))
	merged = append(merged, added...)
	merged = append(merged, existing...)
	SortByPublished(merged)
	return merged, added
}

// SortByPublished stably sorts papers by published date, newest first.
func SortByPublished(papers []paper.Paper) {
	slices.SortStableFunc(papers, func(a, b paper.Paper) int {
		return b.Published.Compare(a.Published)
	})
}

// PublishedOn returns the papers published on day, keeping the first of any repeated ID.
func PublishedOn(papers []paper.Paper, day paper.Date) []paper.Paper {
	var out []paper.Paper
	seen := make(map[string]struct{})
	for _, p := range papers {
		if p.Published != day {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
