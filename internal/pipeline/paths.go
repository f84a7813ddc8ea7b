package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the fixed file layout under one data directory. Every stage
// reads and writes through these so runs are resumable across processes.
type Paths struct {
	DataDir string

	FlatRecords   string // ingest output, one record per input row
	SortedRecords string // aggregate output, grouped and season-sorted
	Enriched      string // enrich output, successful matches with payloads
	Minimal       string // audit projection of every processed record
	Manifest      string // append-only processing log, drives resumption
	LowConfidence string // matches that scored below the accept threshold
	Errors        string // failed and no-result records, full echo
	Clean         string // partition output, accepted records
	Film          string // category partition outputs
	TV            string
	Other         string
	BoxOffice     string // scraped budget table rows
	Combined      string // film partition joined with box-office rows
}

// DefaultPaths lays the standard file tree out under dataDir.
func DefaultPaths(dataDir string) Paths {
	join := func(parts ...string) string {
		return filepath.Join(append([]string{dataDir}, parts...)...)
	}
	return Paths{
		DataDir:       dataDir,
		FlatRecords:   join("processed", "flatRecords.jsonl"),
		SortedRecords: join("processed", "sortedRecords.jsonl"),
		Enriched:      join("processed", "enrichedRecords.jsonl"),
		Minimal:       join("processed", "minimalRecords.jsonl"),
		Manifest:      join("processed", "manifest.jsonl"),
		LowConfidence: join("partitions", "lowConfidence.jsonl"),
		Errors:        join("errors", "errorRecords.jsonl"),
		Clean:         join("partitions", "clean.jsonl"),
		Film:          join("partitions", "film.jsonl"),
		TV:            join("partitions", "tv.jsonl"),
		Other:         join("partitions", "other.jsonl"),
		BoxOffice:     join("processed", "boxOffice.jsonl"),
		Combined:      join("processed", "combinedFilms.jsonl"),
	}
}

// Ensure creates the directory tree so stages can open files in append mode
// without caring whether this is a fresh or resumed run.
func (p Paths) Ensure() error {
	for _, dir := range []string{
		p.DataDir,
		filepath.Join(p.DataDir, "processed"),
		filepath.Join(p.DataDir, "partitions"),
		filepath.Join(p.DataDir, "errors"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}
	return nil
}
