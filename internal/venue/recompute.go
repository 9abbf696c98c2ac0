package venue

import (
	"sort"

	"github.com/matsen/dailypaper/internal/paper"
)

// DefaultTopVenues is how many venues a Summary ranks.
const DefaultTopVenues = 10

// VenueCount is the number of papers attributed to one venue acronym.
type VenueCount struct {
	Venue string `json:"venue"`
	Count int    `json:"count"`
}

// Summary reports the outcome of Recompute.
type Summary struct {
	Total     int          `json:"total"`
	WithVenue int          `json:"with_venue"` // papers whose comment yielded a venue
	Preprints int          `json:"preprints"`
	Changed   int          `json:"changed"` // papers whose conference field changed
	Top       []VenueCount `json:"top"`
}

// Recompute re-extracts the venue of every paper from its comment, in place.
// A paper whose comment yields nothing keeps its current conference.
// Top ranks venue acronyms by count, ties broken by name, up to topN entries.
func Recompute(papers []paper.Paper, e *Extractor, topN int) Summary {
	s := Summary{Total: len(papers), Top: []VenueCount{}}
	counts := make(map[string]int)

	for i := range papers {
		p := &papers[i]
		v := e.ExtractPtr(p.Comment)
		if v == nil {
			continue
		}
		s.WithVenue++
		counts[Acronym(*v)]++
		if !p.HasConference() || *p.Conference != *v {
			s.Changed++
		}
		p.Conference = v
	}
	s.Preprints = s.Total - s.WithVenue

	for name, n := range counts {
		s.Top = append(s.Top, VenueCount{Venue: name, Count: n})
	}
	sort.Slice(s.Top, func(i, j int) bool {
		if s.Top[i].Count != s.Top[j].Count {
			return s.Top[i].Count > s.Top[j].Count
		}
		return s.Top[i].Venue < s.Top[j].Venue
	})
	if topN >= 0 && len(s.Top) > topN {
		s.Top = s.Top[:topN]
	}
	return s
}
