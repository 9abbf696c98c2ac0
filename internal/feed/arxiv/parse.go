package arxiv

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/matsen/dailypaper/internal/feed"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// arxivPrefix is the namespace prefix arXiv declares for its Atom extensions
// (xmlns:arxiv="http://arxiv.org/schemas/atom").
const arxivPrefix = "arxiv"

// errorEntryMarker appears in the entry id of the pseudo-entry arXiv returns for
// malformed queries ("http://arxiv.org/api/errors#incorrect_id_format_for_1234").
const errorEntryMarker = "/api/errors"

// parseFeed decodes an arXiv Atom response into records, in feed order.
func parseFeed(r io.Reader) ([]feed.Record, error) {
	f, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	records := make([]feed.Record, 0, len(f.Items))
	for _, item := range f.Items {
		if item == nil {
			continue
		}
		if strings.Contains(item.GUID, errorEntryMarker) {
			return nil, &APIError{
				StatusCode: http.StatusBadRequest,
				Message:    strings.TrimSpace(item.Description),
			}
		}
		rec, ok := itemToRecord(item)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// itemToRecord converts one Atom entry. Entries without an identifier are skipped.
func itemToRecord(item *gofeed.Item) (feed.Record, bool) {
	entryID := strings.TrimSpace(item.GUID)
	if entryID == "" {
		entryID = strings.TrimSpace(item.Link)
	}
	if entryID == "" {
		return feed.Record{}, false
	}

	rec := feed.Record{
		EntryID:      entryID,
		Title:        item.Title,
		Summary:      item.Description,
		Categories:   append([]string(nil), item.Categories...),
		CanonicalURL: entryID,
	}

	for _, a := range item.Authors {
		if a == nil {
			continue
		}
		if name := strings.TrimSpace(a.Name); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}

	if item.PublishedParsed != nil {
		rec.Published = item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		rec.Updated = item.UpdatedParsed.UTC()
	}

	rec.PDFURL = pdfLink(item, entryID)

	if e, ok := extension(item, "comment"); ok && strings.TrimSpace(e.Value) != "" {
		comment := e.Value
		rec.Comment = &comment
	}

	if e, ok := extension(item, "primary_category"); ok {
		rec.PrimaryCategory = e.Attrs["term"]
	}
	if rec.PrimaryCategory == "" && len(rec.Categories) > 0 {
		rec.PrimaryCategory = rec.Categories[0]
	}

	return rec, true
}

// pdfLink finds the PDF link among the entry's links, falling back to the
// conventional /pdf/ URL derived from the abstract URL.
func pdfLink(item *gofeed.Item, entryID string) string {
	for _, l := range item.Links {
		if strings.Contains(l, "/pdf/") {
			return l
		}
	}
	if strings.Contains(entryID, "/abs/") {
		return strings.Replace(entryID, "/abs/", "/pdf/", 1)
	}
	return ""
}

// extension returns the first extension element with the given name, preferring the
// arxiv prefix and otherwise searching other prefixes in sorted order.
func extension(item *gofeed.Item, name string) (ext.Extension, bool) {
	if item.Extensions == nil {
		return ext.Extension{}, false
	}
	if found, ok := firstNamed(item.Extensions[arxivPrefix], name); ok {
		return found, true
	}

	prefixes := make([]string, 0, len(item.Extensions))
	for p := range item.Extensions {
		if p != arxivPrefix {
			prefixes = append(prefixes, p)
		}
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		if found, ok := firstNamed(item.Extensions[p], name); ok {
			return found, true
		}
	}
	return ext.Extension{}, false
}

func firstNamed(elems map[string][]ext.Extension, name string) (ext.Extension, bool) {
	if list := elems[name]; len(list) > 0 {
		return list[0], true
	}
	return ext.Extension{}, false
}
