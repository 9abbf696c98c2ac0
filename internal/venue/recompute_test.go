package venue

import (
	"testing"

	"github.com/matsen/dailypaper/internal/paper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withComment(id, comment string) paper.Paper {
	return paper.Paper{ID: id, Comment: paper.StringPtr(comment)}
}

func TestRecompute(t *testing.T) {
	stale := "CVPR"
	kept := "ICML 2023"

	papers := []paper.Paper{
		withComment("a", "Accepted to CVPR 2025"),
		withComment("b", "CVPR 2024 highlight"),
		withComment("c", "ICLR 2025"),
		withComment("d", "preprint"),
		{ID: "e"},
		withComment("f", "10 pages"),
	}
	papers[0].Conference = &stale
	papers[5].Conference = &kept

	s := Recompute(papers, NewDefault(), DefaultTopVenues)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 3, s.WithVenue)
	assert.Equal(t, 3, s.Preprints)
	assert.Equal(t, 3, s.Changed)
	assert.Equal(t, []VenueCount{{"CVPR", 2}, {"ICLR", 1}}, s.Top)

	require.NotNil(t, papers[0].Conference)
	assert.Equal(t, "CVPR 2025", *papers[0].Conference)
	assert.Nil(t, papers[3].Conference)
	assert.Nil(t, papers[4].Conference)
	require.NotNil(t, papers[5].Conference)
	assert.Equal(t, "ICML 2023", *papers[5].Conference, "misses keep the existing value")
}

func TestRecompute_Idempotent(t *testing.T) {
	papers := []paper.Paper{withComment("a", "NeurIPS 2024"), withComment("b", "KDD")}

	Recompute(papers, NewDefault(), DefaultTopVenues)
	s := Recompute(papers, NewDefault(), DefaultTopVenues)
	assert.Equal(t, 0, s.Changed)
	assert.Equal(t, 2, s.WithVenue)
}

func TestRecompute_TopLimit(t *testing.T) {
	papers := []paper.Paper{
		withComment("a", "KDD 2024"),
		withComment("b", "AAAI 2024"),
		withComment("c", "AAAI 2025"),
	}

	s := Recompute(papers, NewDefault(), 1)
	assert.Equal(t, []VenueCount{{"AAAI", 2}}, s.Top)
}
