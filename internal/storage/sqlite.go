package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/dailypaper/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection. The database is an ephemeral query
// index over the corpus JSONL and can be rebuilt from it at any time.
type DB struct {
	db *sql.DB
}

// selectPaperFields contains the standard field list for SELECT queries.
const selectPaperFields = `id, title, abstract, published, updated,
	primary_category, comment, conference,
	pdf_url, source_url, source, query_category,
	authors_json, categories_json, tags_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT,
			published TEXT,
			updated TEXT,
			primary_category TEXT,
			comment TEXT,
			conference TEXT,
			pdf_url TEXT,
			source_url TEXT,
			source TEXT,
			query_category TEXT,
			authors_json TEXT NOT NULL,
			categories_json TEXT NOT NULL,
			tags_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published);

		-- One row per (paper, tag) for tag filters and counts
		CREATE TABLE IF NOT EXISTS paper_tags (
			paper_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (paper_id, tag)
		);

		CREATE INDEX IF NOT EXISTS idx_paper_tags_tag ON paper_tags(tag);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			id,
			title,
			abstract,
			authors_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a corpus file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	papers, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	return d.Rebuild(papers)
}

// Rebuild replaces the indexed contents with papers in a single transaction.
func (d *DB) Rebuild(papers []paper.Paper) (n int, err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"papers", "paper_tags", "papers_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	papersStmt, err := tx.Prepare(`
		INSERT INTO papers (
			id, title, abstract, published, updated,
			primary_category, comment, conference,
			pdf_url, source_url, source, query_category,
			authors_json, categories_json, tags_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer papersStmt.Close()

	tagsStmt, err := tx.Prepare(`INSERT OR IGNORE INTO paper_tags (paper_id, tag) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing tags insert: %w", err)
	}
	defer tagsStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO papers_fts (id, title, abstract, authors_text)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, p := range papers {
		p = withEmptySlices(p)
		authorsJSON, err := json.Marshal(p.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", p.ID, err)
		}
		categoriesJSON, err := json.Marshal(p.Categories)
		if err != nil {
			return 0, fmt.Errorf("marshaling categories for %s: %w", p.ID, err)
		}
		tagsJSON, err := json.Marshal(p.Tags)
		if err != nil {
			return 0, fmt.Errorf("marshaling tags for %s: %w", p.ID, err)
		}

		_, err = papersStmt.Exec(
			p.ID, p.Title, p.Abstract, p.Published.String(), p.Updated.String(),
			p.PrimaryCategory, nullableString(p.Comment), nullableString(p.Conference),
			p.PDFURL, p.SourceURL, p.Source, p.QueryCategory,
			string(authorsJSON), string(categoriesJSON), string(tagsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}

		for _, tag := range p.Tags {
			if _, err := tagsStmt.Exec(p.ID, tag); err != nil {
				return 0, fmt.Errorf("inserting tag for %s: %w", p.ID, err)
			}
		}

		if _, err := ftsStmt.Exec(p.ID, p.Title, p.Abstract, strings.Join(p.Authors, ", ")); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(papers), nil
}

// GetByID retrieves a paper by its ID. Returns nil when absent.
func (d *DB) GetByID(id string) (*paper.Paper, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE id = ?`, id)
	return scanPaper(row)
}

// Search performs a full-text search over title, abstract and authors,
// returning matches newest first.
func (d *DB) Search(query string, limit int) ([]paper.Paper, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectPaperFields+`
		FROM papers
		WHERE id IN (SELECT id FROM papers_fts WHERE papers_fts MATCH ?)
		ORDER BY published DESC, id
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Status filters papers by whether a venue was extracted.
type Status string

const (
	StatusAny       Status = ""
	StatusPublished Status = "published"
	StatusPreprint  Status = "preprint"
)

// ParseStatus validates a --status value.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusAny:
		return StatusAny, nil
	case StatusPublished:
		return StatusPublished, nil
	case StatusPreprint:
		return StatusPreprint, nil
	default:
		return StatusAny, fmt.Errorf("unknown status %q (want published or preprint)", s)
	}
}

// ListFilters contains optional filters for List. Zero values match everything.
type ListFilters struct {
	Tag    string     // Classification tag, exact match
	Date   paper.Date // Published date
	Status Status
	Limit  int // 0 = no limit
}

// List returns papers matching all filters, newest first.
func (d *DB) List(f ListFilters) ([]paper.Paper, error) {
	query := `SELECT ` + selectPaperFields + ` FROM papers WHERE 1=1`
	var args []any

	if f.Tag != "" {
		query += " AND id IN (SELECT paper_id FROM paper_tags WHERE tag = ?)"
		args = append(args, f.Tag)
	}
	if !f.Date.IsZero() {
		query += " AND published = ?"
		args = append(args, f.Date.String())
	}
	switch f.Status {
	case StatusPublished:
		query += " AND conference IS NOT NULL AND conference != ''"
	case StatusPreprint:
		query += " AND (conference IS NULL OR conference = '')"
	}

	query += " ORDER BY published DESC, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Count returns the total number of papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// CountPublished returns the number of papers with an extracted venue.
func (d *DB) CountPublished() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers WHERE conference IS NOT NULL AND conference != ''").Scan(&count)
	return count, err
}

// CountUntagged returns the number of papers without any tag.
func (d *DB) CountUntagged() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers WHERE id NOT IN (SELECT paper_id FROM paper_tags)").Scan(&count)
	return count, err
}

// TagCount is the number of papers carrying one tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts returns paper counts per tag, most frequent first.
func (d *DB) TagCounts() ([]TagCount, error) {
	rows, err := d.db.Query(`
		SELECT tag, COUNT(*) AS n
		FROM paper_tags
		GROUP BY tag
		ORDER BY n DESC, tag`)
	if err != nil {
		return nil, fmt.Errorf("counting tags: %w", err)
	}
	defer rows.Close()

	var counts []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(s scanner) (*paper.Paper, error) {
	var p paper.Paper
	var abstract, published, updated, primary, pdfURL, sourceURL, source, queryCat sql.NullString
	var comment, conference sql.NullString
	var authorsJSON, categoriesJSON, tagsJSON string

	err := s.Scan(
		&p.ID, &p.Title, &abstract, &published, &updated,
		&primary, &comment, &conference,
		&pdfURL, &sourceURL, &source, &queryCat,
		&authorsJSON, &categoriesJSON, &tagsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p.Abstract = abstract.String
	p.PrimaryCategory = primary.String
	p.PDFURL = pdfURL.String
	p.SourceURL = sourceURL.String
	p.Source = source.String
	p.QueryCategory = queryCat.String
	if comment.Valid {
		p.Comment = &comment.String
	}
	if conference.Valid {
		p.Conference = &conference.String
	}

	if p.Published, err = parseNullDate(published); err != nil {
		return nil, fmt.Errorf("parsing published for %s: %w", p.ID, err)
	}
	if p.Updated, err = parseNullDate(updated); err != nil {
		return nil, fmt.Errorf("parsing updated for %s: %w", p.ID, err)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(categoriesJSON), &p.Categories); err != nil {
		return nil, fmt.Errorf("parsing categories JSON for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
		return nil, fmt.Errorf("parsing tags JSON for %s: %w", p.ID, err)
	}

	return &p, nil
}

func scanPapers(rows *sql.Rows) ([]paper.Paper, error) {
	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		if p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, rows.Err()
}

func parseNullDate(s sql.NullString) (paper.Date, error) {
	if !s.Valid || s.String == "" {
		return paper.Date{}, nil
	}
	return paper.ParseDate(s.String)
}

// nullableString converts an optional string to sql.NullString.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
