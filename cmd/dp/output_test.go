package main

import (
	"testing"
	"time"

	"github.com/matsen/dailypaper/internal/config"
	"github.com/matsen/dailypaper/internal/feed/arxiv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"none", nil, ""},
		{"one", []string{"Ada Lovelace"}, "Ada Lovelace"},
		{"exactly five", []string{"A", "B", "C", "D", "E"}, "A, B, C, D, E"},
		{"six", []string{"A", "B", "C", "D", "E", "F"}, "A, B, C, D, E et al."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAuthors(tt.authors, MaxDisplayAuthors))
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", truncateString("éééééééééééé", 10))
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "short", wrapText("short", 20, "  "))
	assert.Equal(t, "one two\n  three four", wrapText("one two three four", 10, "  "))
}

func TestFetchRunConfig_Overrides(t *testing.T) {
	days := 2
	src := config.SourceConfig{Categories: []string{"cs.CV"}, MaxResults: 50, DaysBack: &days}

	t.Cleanup(func() {
		fetchCategories, fetchLimit, fetchDaysBack = nil, 0, -1
	})

	rc := fetchRunConfig(src)
	assert.Equal(t, []string{"cs.CV"}, rc.Categories)
	assert.Equal(t, 50, rc.Limit)
	assert.Equal(t, 48*time.Hour, rc.Window)

	fetchCategories = []string{"cs.RO"}
	fetchLimit = 5
	fetchDaysBack = 0
	rc = fetchRunConfig(src)
	assert.Equal(t, []string{"cs.RO"}, rc.Categories)
	assert.Equal(t, 5, rc.Limit)
	assert.Equal(t, time.Duration(0), rc.Window)
}

func TestNewSource(t *testing.T) {
	src, err := newSource(config.SourceArXiv, config.DefaultConfig())
	require.NoError(t, err)
	_, ok := src.(*arxiv.Client)
	assert.True(t, ok)
	assert.Equal(t, "arXiv", src.Name())

	_, err = newSource("pubmed", config.DefaultConfig())
	assert.Error(t, err)
}

func TestEffectiveConfig(t *testing.T) {
	res := effectiveConfig(config.DefaultConfig())
	require.Contains(t, res.Sources, config.SourceArXiv)
	assert.Equal(t, float64(1), res.Sources[config.SourceArXiv].WindowDays)
	assert.Equal(t, "30s", res.Feed.Timeout)
	assert.Len(t, res.Categories, 5)
	assert.Equal(t, []string{"a", "b"}, sortedKeys(map[string]int{"b": 1, "a": 2}))
}
