// Package paper defines the core domain types for the paper corpus.
package paper

// Paper is one entry of the corpus.
type Paper struct {
	// Identity
	ID string `json:"id"` // Feed identifier, last path segment of the entry URL (deduplication key)

	// Metadata
	Title    string   `json:"title"`
	Authors  []string `json:"authors"` // Feed order, never re-sorted
	Abstract string   `json:"abstract"`

	// Dates
	Published Date `json:"published"`
	Updated   Date `json:"updated"`

	// Feed taxonomy
	Categories      []string `json:"categories"`
	PrimaryCategory string   `json:"primary_category"`

	// Links
	PDFURL    string `json:"pdf_url"`
	SourceURL string `json:"source_url"`

	// Provenance
	Source        string `json:"source"`         // Feed name, e.g. arXiv
	QueryCategory string `json:"query_category"` // Configured category whose fetch produced this record

	// Free-text annotation from the feed ("10 pages, accepted to CVPR 2025")
	Comment *string `json:"comment"`

	// Derived
	Conference *string  `json:"conference"`
	Tags       []string `json:"tags"`
}

// HasConference reports whether a venue was extracted for the paper.
func (p *Paper) HasConference() bool {
	return p.Conference != nil && *p.Conference != ""
}

// CommentText returns the comment, or "" when absent.
func (p *Paper) CommentText() string {
	if p.Comment == nil {
		return ""
	}
	return *p.Comment
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
