package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/dailypaper/internal/paper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a test database indexed from a JSONL corpus.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "papers.jsonl")

	cvpr := "CVPR 2025"
	comment := "Accepted to CVPR 2025"
	seg := testPaper("2506.00003v1", day(2025, time.June, 3))
	seg.Title = "Image Segmentation Methods"
	seg.Abstract = "We segment images with transformers."
	seg.Authors = []string{"Ada Lovelace", "Grace Hopper"}
	seg.Comment = &comment
	seg.Conference = &cvpr
	seg.Tags = []string{"Computer Vision", "Machine Learning"}

	llm := testPaper("2506.00002v1", day(2025, time.June, 2))
	llm.Title = "Scaling Language Models"
	llm.Abstract = "Bigger is better, sometimes."
	llm.Authors = []string{"Alan Turing"}
	llm.Tags = []string{"Natural Language Processing", "Machine Learning"}

	robot := testPaper("2506.00001v1", day(2025, time.June, 2))
	robot.Title = "Legged Locomotion"
	robot.Abstract = "A robot walks."
	robot.Authors = []string{"Grace Hopper"}
	robot.Tags = []string{"Robotics"}

	require.NoError(t, WriteAll(jsonlPath, []paper.Paper{seg, llm, robot}))

	db, err := OpenDB(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	n, err := db.RebuildFromJSONL(jsonlPath)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	return db
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "new.db"))
	require.NoError(t, err)
	defer db.Close()

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetByID(t *testing.T) {
	db := setupTestDB(t)

	p, err := db.GetByID("2506.00003v1")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "Image Segmentation Methods", p.Title)
	assert.Equal(t, []string{"Ada Lovelace", "Grace Hopper"}, p.Authors)
	assert.Equal(t, day(2025, time.June, 3), p.Published)
	assert.Equal(t, []string{"Computer Vision", "Machine Learning"}, p.Tags)
	require.NotNil(t, p.Conference)
	assert.Equal(t, "CVPR 2025", *p.Conference)
	require.NotNil(t, p.Comment)
	assert.Equal(t, "Accepted to CVPR 2025", *p.Comment)

	other, err := db.GetByID("2506.00001v1")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Nil(t, other.Comment)
	assert.Nil(t, other.Conference)

	missing, err := db.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRebuild_ReplacesContents(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.Rebuild([]paper.Paper{testPaper("only", day(2025, 1, 1))})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	counts, err := db.TagCounts()
	require.NoError(t, err)
	assert.Empty(t, counts)

	untagged, err := db.CountUntagged()
	require.NoError(t, err)
	assert.Equal(t, 1, untagged)

	results, err := db.Search("segmentation", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title word", "segmentation", []string{"2506.00003v1"}},
		{"abstract word", "robot", []string{"2506.00001v1"}},
		{"author", "Hopper", []string{"2506.00003v1", "2506.00001v1"}},
		{"no match", "quantum", nil},
		{"special characters", "C++", nil},
		{"empty", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestList(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name    string
		filters ListFilters
		want    []string
	}{
		{"all newest first", ListFilters{}, []string{"2506.00003v1", "2506.00001v1", "2506.00002v1"}},
		{"by tag", ListFilters{Tag: "Machine Learning"}, []string{"2506.00003v1", "2506.00002v1"}},
		{"by date", ListFilters{Date: day(2025, time.June, 2)}, []string{"2506.00001v1", "2506.00002v1"}},
		{"published", ListFilters{Status: StatusPublished}, []string{"2506.00003v1"}},
		{"preprint", ListFilters{Status: StatusPreprint}, []string{"2506.00001v1", "2506.00002v1"}},
		{"limit", ListFilters{Limit: 1}, []string{"2506.00003v1"}},
		{"combined", ListFilters{Tag: "Machine Learning", Status: StatusPreprint}, []string{"2506.00002v1"}},
		{"unknown tag", ListFilters{Tag: "Astronomy"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.List(tt.filters)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestTagCountsAndPublished(t *testing.T) {
	db := setupTestDB(t)

	counts, err := db.TagCounts()
	require.NoError(t, err)
	assert.Equal(t, []TagCount{
		{Tag: "Machine Learning", Count: 2},
		{Tag: "Computer Vision", Count: 1},
		{Tag: "Natural Language Processing", Count: 1},
		{Tag: "Robotics", Count: 1},
	}, counts)

	published, err := db.CountPublished()
	require.NoError(t, err)
	assert.Equal(t, 1, published)

	untagged, err := db.CountUntagged()
	require.NoError(t, err)
	assert.Equal(t, 0, untagged)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"":          StatusAny,
		"published": StatusPublished,
		"Preprint":  StatusPreprint,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatus("retracted")
	assert.Error(t, err)
}

func TestPrepareFTSQuery(t *testing.T) {
	assert.Equal(t, "", prepareFTSQuery("  "))
	assert.Equal(t, "vision", prepareFTSQuery(" vision "))
	assert.Equal(t, `"C++"`, prepareFTSQuery("C++"))
	assert.Equal(t, `"say ""hi"""`, prepareFTSQuery(`say "hi"`))
}
