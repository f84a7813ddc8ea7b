package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"go-title-enrich/internal/model"
)

// ResumeCursor scans the manifest and returns the index the next run should
// start at: one past the highest indexNum ever logged. Workers finish out of
// order, so the maximum matters and the last line does not. A missing or
// empty manifest means start from the beginning.
//
// Lines that fail to parse are skipped; a truncated final line from a
// killed run must not block resumption.
func ResumeCursor(manifestPath string) (int, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	maxIndex := -1
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry model.ManifestEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.IndexNum > maxIndex {
			maxIndex = entry.IndexNum
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan manifest: %w", err)
	}
	return maxIndex + 1, nil
}
