package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matsen/dailypaper/internal/paper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) paper.Date {
	return paper.Date{Year: y, Month: m, Day: d}
}

func testPaper(id string, published paper.Date) paper.Paper {
	return paper.Paper{
		ID:              id,
		Title:           "Paper " + id,
		Authors:         []string{"Ada Lovelace"},
		Abstract:        "Abstract of " + id,
		Published:       published,
		Updated:         published,
		Categories:      []string{"cs.LG"},
		PrimaryCategory: "cs.LG",
		PDFURL:          "http://arxiv.org/pdf/" + id,
		SourceURL:       "http://arxiv.org/abs/" + id,
		Source:          "arXiv",
		QueryCategory:   "cs.LG",
		Tags:            []string{},
	}
}

func TestReadAll_NonExistentFile(t *testing.T) {
	papers, err := ReadAll(filepath.Join(t.TempDir(), "papers.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestReadAll_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	papers, err := ReadAll(path)
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestReadAll_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	content := `{"id":"a","title":"A","published":"2025-06-01","comment":null,"tags":[]}` + "\n\n" +
		`{"id":"b","title":"B","published":"2025-05-01","comment":"ICML 2024","conference":"ICML 2024","tags":["Machine Learning"]}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	papers, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, papers, 2)

	assert.Equal(t, "a", papers[0].ID)
	assert.Nil(t, papers[0].Comment)
	assert.Equal(t, day(2025, time.June, 1), papers[0].Published)

	require.NotNil(t, papers[1].Conference)
	assert.Equal(t, "ICML 2024", *papers[1].Conference)
	assert.Equal(t, []string{"Machine Learning"}, papers[1].Tags)
}

func TestReadAll_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	content := `{"id":"a","published":"2025-06-01"}` + "\n" + `{"id": broken` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := ReadAll(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteAll_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")

	comment := "Accepted to CVPR 2025"
	venue := "CVPR 2025"
	a := testPaper("2506.00002v1", day(2025, time.June, 2))
	a.Comment = &comment
	a.Conference = &venue
	a.Tags = []string{"Computer Vision"}
	b := testPaper("2506.00001v1", day(2025, time.June, 1))

	require.NoError(t, WriteAll(path, []paper.Paper{a, b}))

	got, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, []paper.Paper{a, b}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteAll_NilSlicesAsEmptyArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	require.NoError(t, WriteAll(path, []paper.Paper{{ID: "x"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, `"authors":[]`)
	assert.Contains(t, line, `"categories":[]`)
	assert.Contains(t, line, `"tags":[]`)
	assert.Contains(t, line, `"comment":null`)
	assert.Contains(t, line, `"conference":null`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestWriteAll_ReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "papers.jsonl")

	require.NoError(t, WriteAll(path, []paper.Paper{testPaper("a", day(2025, 1, 1)), testPaper("b", day(2025, 1, 2))}))
	require.NoError(t, WriteAll(path, []paper.Paper{testPaper("c", day(2025, 1, 3))}))

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestWriteAll_MissingDirectoryKeepsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "papers.jsonl")
	err := WriteAll(path, []paper.Paper{testPaper("a", day(2025, 1, 1))})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFindByID(t *testing.T) {
	papers := []paper.Paper{testPaper("a", day(2025, 1, 1)), testPaper("b", day(2025, 1, 2))}

	idx, ok := FindByID(papers, "b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = FindByID(papers, "zzz")
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}
