// Package storage persists the paper corpus as JSONL and indexes it in SQLite.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/dailypaper/internal/paper"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ErrMalformed marks a corpus file whose contents cannot be decoded.
var ErrMalformed = errors.New("malformed corpus file")

// ReadAll reads all papers from a JSONL file.
// A missing file yields an empty corpus.
func ReadAll(path string) ([]paper.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()

	var papers []paper.Paper
	scanner := bufio.NewScanner(f)

	// Abstracts can be long
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p paper.Paper
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("%w: parsing line %d: %v", ErrMalformed, lineNum, err)
		}
		papers = append(papers, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading corpus file: %v", ErrMalformed, err)
	}

	return papers, nil
}

// WriteAll replaces the file at path with papers, one per line.
// The content is written to a temporary file in the same directory and renamed
// into place, so readers see either the old or the new corpus.
func WriteAll(path string, papers []paper.Paper) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for i, p := range papers {
		data, err := json.Marshal(withEmptySlices(p))
		if err != nil {
			return fmt.Errorf("encoding paper %d (%s): %w", i, p.ID, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing paper %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing corpus: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting corpus permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing corpus: %w", err)
	}
	return nil
}

// withEmptySlices keeps list fields as [] rather than null on disk.
func withEmptySlices(p paper.Paper) paper.Paper {
	if p.Authors == nil {
		p.Authors = []string{}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}

// FindByID searches for a paper by ID.
func FindByID(papers []paper.Paper, id string) (int, bool) {
	for i, p := range papers {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}
