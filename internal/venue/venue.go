// Package venue derives a publication venue label from a paper's free-text comment.
package venue

import (
	"fmt"
	"regexp"
	"strings"
)

// JournalFallbackMaxLen is the number of characters of the comment kept when only a
// journal indicator token matched.
const JournalFallbackMaxLen = 50

// preprintMarker short-circuits extraction: comments saying "preprint" have no venue.
const preprintMarker = "preprint"

// DefaultConferences is the conference acronym table used when configuration
// does not supply one. Order matters: earlier entries win.
var DefaultConferences = []string{
	"CVPR", "ICCV", "ECCV", "NeurIPS", "ICML", "ICLR",
	"ACL", "EMNLP", "NAACL", "AAAI", "IJCAI", "KDD",
	"ICRA", "IROS", "CoRL", "RSS",
	"SIGIR", "WWW", "WSDM", "RecSys",
	"SIGMOD", "VLDB", "ICDE",
	"SIGGRAPH", "ICASSP", "INTERSPEECH",
}

// DefaultJournals is the journal/publisher indicator table used when configuration
// does not supply one.
var DefaultJournals = []string{
	"Nature", "Science", "PAMI", "TPAMI", "JMLR", "IJCV",
	"IEEE", "ACM", "Transactions", "Journal",
}

// conference holds the compiled patterns for one acronym.
type conference struct {
	name     string
	withYear *regexp.Regexp
	bare     *regexp.Regexp
}

// Extractor matches comments against ordered conference and journal tables.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	conferences []conference
	journals    []string // lowercased
}

// New compiles an Extractor from the given tables. Empty entries are skipped.
func New(conferences, journals []string) (*Extractor, error) {
	e := &Extractor{}

	for _, name := range conferences {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		quoted := regexp.QuoteMeta(name)
		withYear, err := regexp.Compile(`(?i)\b` + quoted + `\s*[:']?\s*(\d{4})\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern for %q: %w", name, err)
		}
		bare, err := regexp.Compile(`(?i)\b` + quoted + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern for %q: %w", name, err)
		}
		e.conferences = append(e.conferences, conference{name: name, withYear: withYear, bare: bare})
	}

	for _, j := range journals {
		j = strings.TrimSpace(j)
		if j == "" {
			continue
		}
		e.journals = append(e.journals, strings.ToLower(j))
	}

	return e, nil
}

// NewDefault returns an Extractor over DefaultConferences and DefaultJournals.
func NewDefault() *Extractor {
	e, err := New(DefaultConferences, DefaultJournals)
	if err != nil {
		// The default tables are plain acronyms and always compile.
		panic(err)
	}
	return e
}

// Extract returns the venue described by comment, or ok=false when there is none.
//
// A conference match yields "ACRONYM YEAR" or just "ACRONYM", spelled as in the
// table. A journal indicator match yields the comment itself cut to
// JournalFallbackMaxLen characters.
func (e *Extractor) Extract(comment string) (string, bool) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", false
	}

	lower := strings.ToLower(comment)
	if strings.Contains(lower, preprintMarker) {
		return "", false
	}

	for _, c := range e.conferences {
		if m := c.withYear.FindStringSubmatch(comment); m != nil {
			return c.name + " " + m[1], true
		}
		if c.bare.MatchString(comment) {
			return c.name, true
		}
	}

	for _, j := range e.journals {
		if strings.Contains(lower, j) {
			return truncateRunes(comment, JournalFallbackMaxLen), true
		}
	}

	return "", false
}

// ExtractPtr is Extract over optional strings, as stored on paper.Paper.
func (e *Extractor) ExtractPtr(comment *string) *string {
	if comment == nil {
		return nil
	}
	v, ok := e.Extract(*comment)
	if !ok {
		return nil
	}
	return &v
}

// Acronym returns the conference part of a venue label ("CVPR 2025" -> "CVPR").
func Acronym(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
