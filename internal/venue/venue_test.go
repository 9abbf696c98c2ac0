package venue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Defaults(t *testing.T) {
	e := NewDefault()

	tests := []struct {
		name    string
		comment string
		want    string
		wantOK  bool
	}{
		{"accepted with year", "Accepted to CVPR 2025", "CVPR 2025", true},
		{"bare with year", "ICML 2024", "ICML 2024", true},
		{"trailing text", "ICCV 2023 Oral Presentation", "ICCV 2023", true},
		{"preprint", "preprint", "", false},
		{"preprint mixed case", "Preprint. Under review at NeurIPS 2025", "", false},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
		{"acronym without year", "To appear at ECCV", "ECCV", true},
		{"apostrophe year", "NeurIPS'2024 workshop", "NeurIPS 2024", true},
		{"colon year", "AAAI: 2025", "AAAI 2025", true},
		{"case insensitive, table spelling", "accepted by neurips 2024", "NeurIPS 2024", true},
		{"word boundary", "ACLU report, 12 pages", "", false},
		{"two digit year is not a year", "CVPR 25", "CVPR", true},
		{"no venue", "12 pages, 5 figures", "", false},
		{"journal fallback", "IEEE Transactions on Pattern Analysis", "IEEE Transactions on Pattern Analysis", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.comment)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_TableOrderWins(t *testing.T) {
	e := NewDefault()

	// ICLR appears first in the text but CVPR is earlier in the table.
	got, ok := e.Extract("Extended version of our ICLR 2024 paper, accepted to CVPR 2025")
	require.True(t, ok)
	assert.Equal(t, "CVPR 2025", got)
}

func TestExtract_YearPreferredOverBareForSameAcronym(t *testing.T) {
	e := NewDefault()

	got, ok := e.Extract("CVPR workshop; main track CVPR 2026")
	require.True(t, ok)
	assert.Equal(t, "CVPR 2026", got)
}

func TestExtract_JournalFallbackTruncates(t *testing.T) {
	e := NewDefault()

	comment := "IEEE Transactions on Pattern Analysis and Machine Intelligence, vol. 47"
	got, ok := e.Extract(comment)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, "IEEE Transactions"))
	assert.Len(t, []rune(got), JournalFallbackMaxLen)
	assert.Equal(t, comment[:JournalFallbackMaxLen], got)
}

func TestExtract_JournalFallbackCountsRunes(t *testing.T) {
	e, err := New(nil, []string{"Journal"})
	require.NoError(t, err)

	comment := "Journal " + strings.Repeat("é", 60)
	got, ok := e.Extract(comment)
	require.True(t, ok)
	assert.Len(t, []rune(got), JournalFallbackMaxLen)
}

func TestExtract_CustomTables(t *testing.T) {
	e, err := New([]string{"MICCAI", " ", "C++Conf"}, []string{"Lancet"})
	require.NoError(t, err)

	got, ok := e.Extract("Early accept at MICCAI 2025")
	require.True(t, ok)
	assert.Equal(t, "MICCAI 2025", got)

	// Conferences missing from the custom table are not recognized.
	_, ok = e.Extract("CVPR 2025")
	assert.False(t, ok)

	got, ok = e.Extract("Published in The Lancet")
	require.True(t, ok)
	assert.Equal(t, "Published in The Lancet", got)
}

func TestExtract_EmptyTables(t *testing.T) {
	e, err := New(nil, nil)
	require.NoError(t, err)

	_, ok := e.Extract("Accepted to CVPR 2025")
	assert.False(t, ok)
}

func TestExtract_Deterministic(t *testing.T) {
	e := NewDefault()
	comments := []string{"Accepted to CVPR 2025", "IEEE Access", "preprint", "KDD"}

	for _, c := range comments {
		first, firstOK := e.Extract(c)
		for i := 0; i < 5; i++ {
			got, ok := e.Extract(c)
			assert.Equal(t, firstOK, ok)
			assert.Equal(t, first, got)
		}
	}
}

func TestExtractPtr(t *testing.T) {
	e := NewDefault()

	assert.Nil(t, e.ExtractPtr(nil))

	preprint := "preprint"
	assert.Nil(t, e.ExtractPtr(&preprint))

	comment := "Accepted to CVPR 2025"
	got := e.ExtractPtr(&comment)
	require.NotNil(t, got)
	assert.Equal(t, "CVPR 2025", *got)
}

func TestAcronym(t *testing.T) {
	assert.Equal(t, "CVPR", Acronym("CVPR 2025"))
	assert.Equal(t, "KDD", Acronym("KDD"))
	assert.Equal(t, "IEEE", Acronym("IEEE Transactions on Pattern Analysis"))
	assert.Equal(t, "", Acronym(""))
}
