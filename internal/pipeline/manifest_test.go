package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResumeCursorMissingFile(t *testing.T) {
	cursor, err := ResumeCursor(filepath.Join(t.TempDir(), "manifest.jsonl"))
	if err != nil {
		t.Fatalf("ResumeCursor: %v", err)
	}
	if cursor != 0 {
		t.Errorf("cursor = %d, want 0", cursor)
	}
}

func TestResumeCursorTakesMaxIndex(t *testing.T) {
	// Workers finish out of order, so the manifest is not sorted. The
	// cursor must still be one past the highest index ever logged.
	path := filepath.Join(t.TempDir(), "manifest.jsonl")
	lines := `{"status":"success","indexNum":3,"coreTitle":"a"}
{"status":"error","indexNum":1,"coreTitle":"b"}
{"status":"success","indexNum":4,"coreTitle":"c"}
{"status":"no-result","indexNum":2,"coreTitle":"d"}
`
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}

	cursor, err := ResumeCursor(path)
	if err != nil {
		t.Fatalf("ResumeCursor: %v", err)
	}
	if cursor != 5 {
		t.Errorf("cursor = %d, want 5", cursor)
	}
}

func TestResumeCursorSkipsTruncatedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.jsonl")
	lines := `{"status":"success","indexNum":7,"coreTitle":"a"}
{"status":"succ`
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}

	cursor, err := ResumeCursor(path)
	if err != nil {
		t.Fatalf("ResumeCursor: %v", err)
	}
	if cursor != 8 {
		t.Errorf("cursor = %d, want 8", cursor)
	}
}
