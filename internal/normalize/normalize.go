// Package normalize maps raw feed records onto corpus papers.
package normalize

import (
	"strings"

	"github.com/matsen/dailypaper/internal/feed"
	"github.com/matsen/dailypaper/internal/paper"
)

// Record converts a raw feed record into a Paper. Tags and Conference are left
// for the enrichment stages; Tags is set to an empty set so it serializes as [].
func Record(r feed.Record, source, queryCategory string) paper.Paper {
	published := r.Published
	updated := r.Updated
	if updated.IsZero() {
		updated = published
	}

	p := paper.Paper{
		ID:              ExtractID(r.EntryID),
		Title:           normalizeWhitespace(r.Title),
		Abstract:        normalizeWhitespace(r.Summary),
		Authors:         append([]string{}, r.Authors...),
		Categories:      append([]string{}, r.Categories...),
		PrimaryCategory: r.PrimaryCategory,
		PDFURL:          r.PDFURL,
		SourceURL:       r.CanonicalURL,
		Source:          source,
		QueryCategory:   queryCategory,
		Comment:         r.Comment,
		Tags:            []string{},
	}
	if !published.IsZero() {
		p.Published = paper.DateOf(published)
	}
	if !updated.IsZero() {
		p.Updated = paper.DateOf(updated)
	}
	if p.SourceURL == "" {
		p.SourceURL = r.EntryID
	}
	return p
}

// ExtractID returns the last path segment of a URL-like identifier.
// "http://arxiv.org/abs/2501.01234v1" -> "2501.01234v1".
func ExtractID(entryID string) string {
	entryID = strings.TrimRight(strings.TrimSpace(entryID), "/")
	if i := strings.LastIndex(entryID, "/"); i >= 0 {
		return entryID[i+1:]
	}
	return entryID
}

// normalizeWhitespace trims and collapses runs of whitespace, including the
// hard line wraps arXiv puts inside titles and abstracts.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
