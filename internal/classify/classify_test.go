package classify

import (
	"testing"

	"github.com/matsen/dailypaper/internal/paper"
	"github.com/stretchr/testify/assert"
)

func testCategories() map[string][]string {
	return map[string][]string{
		"Computer Vision":             {"image", "vision", "segmentation"},
		"Natural Language Processing": {"language model", "NLP", "text"},
		"Robotics":                    {"robot", "manipulation"},
		"Multimodal":                  {"vision-language", "multimodal"},
	}
}

func TestClassify(t *testing.T) {
	c := New(testCategories())

	tests := []struct {
		name     string
		title    string
		abstract string
		want     []string
	}{
		{
			name:  "title only",
			title: "Image Segmentation Methods",
			want:  []string{"Computer Vision"},
		},
		{
			name:     "abstract match, case insensitive keyword",
			title:    "A Survey",
			abstract: "We review recent advances in nlp benchmarks.",
			want:     []string{"Natural Language Processing"},
		},
		{
			name:     "several categories, sorted (vision-language models also hits language model)",
			title:    "Vision-Language Models for Robot Manipulation",
			abstract: "",
			want:     []string{"Computer Vision", "Multimodal", "Natural Language Processing", "Robotics"},
		},
		{
			name:     "no match",
			title:    "On the Riemann Hypothesis",
			abstract: "We study zeros of the zeta function.",
			want:     []string{},
		},
		{
			name:     "substring match",
			title:    "Imagery of Distant Galaxies",
			abstract: "",
			want:     []string{"Computer Vision"},
		},
		{
			name:     "keyword spanning title and abstract boundary",
			title:    "Large language",
			abstract: "model scaling",
			want:     []string{"Natural Language Processing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(paper.Paper{Title: tt.title, Abstract: tt.abstract})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_SingleKeywordCategory(t *testing.T) {
	c := New(map[string][]string{"Computer Vision": {"image"}})

	got := c.Classify(paper.Paper{Title: "Image Segmentation Methods"})
	assert.Contains(t, got, "Computer Vision")

	got = c.Classify(paper.Paper{Title: "Graph Theory", Abstract: "Planar graphs."})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestClassify_EmptyConfig(t *testing.T) {
	for _, cats := range []map[string][]string{nil, {}} {
		c := New(cats)
		got := c.Classify(paper.Paper{Title: "Image Segmentation Methods"})
		assert.Empty(t, got)
		assert.NotNil(t, got)
	}
}

func TestClassify_IgnoresEmptyKeywords(t *testing.T) {
	c := New(map[string][]string{"Everything": {""}})
	assert.Empty(t, c.Classify(paper.Paper{Title: "anything"}))
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(testCategories())
	p := paper.Paper{
		Title:    "Multimodal Robot Learning from Images and Text",
		Abstract: "A vision-language approach.",
	}

	first := c.Classify(p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(p))
	}
	// A fresh classifier over the same config agrees.
	assert.Equal(t, first, New(testCategories()).Classify(p))
}

func TestCategories(t *testing.T) {
	c := New(testCategories())
	assert.Equal(t, []string{"Computer Vision", "Multimodal", "Natural Language Processing", "Robotics"}, c.Categories())
}
