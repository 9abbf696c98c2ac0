package config

import (
	"path/filepath"
)

const (
	CorpusFile     = "papers.jsonl"
	SnapshotPrefix = "papers_"
	SnapshotSuffix = ".jsonl"
	LockFile       = "papers.jsonl.lock"
	CacheDir       = "cache"
	DBFile         = "papers.db"
)

// CorpusPath returns the path to papers.jsonl in a data directory.
func CorpusPath(dataDir string) string {
	return filepath.Join(dataDir, CorpusFile)
}

// SnapshotPath returns the path to the per-day snapshot for date (YYYY-MM-DD).
func SnapshotPath(dataDir, date string) string {
	return filepath.Join(dataDir, SnapshotPrefix+date+SnapshotSuffix)
}

// LockPath returns the path to the corpus lock file.
func LockPath(dataDir string) string {
	return filepath.Join(dataDir, LockFile)
}

// CachePath returns the path to the cache directory.
func CachePath(dataDir string) string {
	return filepath.Join(dataDir, CacheDir)
}

// DBPath returns the path to the ephemeral query index.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, CacheDir, DBFile)
}
