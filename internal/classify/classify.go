// Package classify assigns topical tags to papers by keyword matching.
package classify

import (
	"sort"
	"strings"

	"github.com/matsen/dailypaper/internal/paper"
)

// category is one configured tag with its lowercased keywords.
type category struct {
	name     string
	keywords []string
}

// Classifier tags papers whose title or abstract contains a category keyword.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	categories []category
}

// New builds a Classifier from a category name -> keywords mapping.
// A nil or empty mapping yields a Classifier that never assigns tags.
func New(categories map[string][]string) *Classifier {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	// Fixed iteration order keeps results independent of map ordering.
	sort.Strings(names)

	c := &Classifier{categories: make([]category, 0, len(names))}
	for _, name := range names {
		var kws []string
		for _, kw := range categories[name] {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			kws = append(kws, kw)
		}
		c.categories = append(c.categories, category{name: name, keywords: kws})
	}
	return c
}

// Categories returns the configured category names in sorted order.
func (c *Classifier) Categories() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.name
	}
	return names
}

// Classify returns the sorted set of category names matching p. Never nil.
func (c *Classifier) Classify(p paper.Paper) []string {
	return c.ClassifyText(p.Title, p.Abstract)
}

// ClassifyText is Classify over raw title and abstract.
func (c *Classifier) ClassifyText(title, abstract string) []string {
	text := strings.ToLower(title + " " + abstract)

	tags := []string{}
	for _, cat := range c.categories {
		for _, kw := range cat.keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, cat.name)
				break
			}
		}
	}
	return tags
}
