package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go-title-enrich/internal/match"
	"go-title-enrich/internal/model"
	"go-title-enrich/internal/titles"
)

// Partition replays the enriched stream and splits it into the clean and
// category partitions. Titles are re-derived from the raw title so records
// written by an older normalization pass come out consistent.
//
// Lines that fail to parse go to the error stream; one bad line never
// aborts the pass.
func Partition(paths Paths, sourceName string) (model.Counters, error) {
	var counters model.Counters

	fmt.Printf("🚀 Starting partition pass over %s\n", paths.Enriched)
	if err := paths.Ensure(); err != nil {
		return counters, err
	}

	in, err := os.Open(paths.Enriched)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("✅ Nothing to partition: no enriched records yet")
			return counters, nil
		}
		return counters, fmt.Errorf("open %s: %w", paths.Enriched, err)
	}
	defer in.Close()

	clean, err := openLineWriter(paths.Clean)
	if err != nil {
		return counters, err
	}
	defer clean.Close()
	low, err := openLineWriter(paths.LowConfidence)
	if err != nil {
		return counters, err
	}
	defer low.Close()
	errOut, err := openLineWriter(paths.Errors)
	if err != nil {
		return counters, err
	}
	defer errOut.Close()

	category := map[string]*lineWriter{}
	for name, path := range map[string]string{
		"film":  paths.Film,
		"tv":    paths.TV,
		"other": paths.Other,
	} {
		w, err := openLineWriter(path)
		if err != nil {
			return counters, err
		}
		defer w.Close()
		category[name] = w
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lineNum++

		var rec model.ContentRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			counters.Errors++
			appendOrLog(errOut, -1, model.ErrorRecord{
				IndexNum: -1,
				Status:   model.StatusError,
				Message:  fmt.Sprintf("unreadable line %d: %v", lineNum, err),
			})
			continue
		}
		counters.Processed++

		rec.Meta.CleanTitle = titles.Clean(rec.Meta.RawTitle)
		rec.Meta.CoreTitle = titles.Core(rec.Meta.RawTitle)
		secondary, _ := titles.SecondaryLanguageTitle(rec.Meta.RawTitle)
		rec.Meta.SecondaryLanguageTitle = secondary

		var payload model.SourcePayload
		ok, err := rec.Source(sourceName, &payload)
		if err != nil || !ok {
			counters.Errors++
			appendOrLog(errOut, rec.Meta.IndexNum, model.ErrorRecord{
				IndexNum:  rec.Meta.IndexNum,
				CoreTitle: rec.Meta.CoreTitle,
				Status:    model.StatusError,
				Message:   fmt.Sprintf("missing or unreadable %s payload", sourceName),
				Record:    &rec,
			})
			continue
		}

		if !match.Accepted(payload.MatchConfidence) {
			counters.LowConfidence++
			appendOrLog(low, rec.Meta.IndexNum, rec)
			continue
		}

		counters.Success++
		appendOrLog(clean, rec.Meta.IndexNum, rec)

		switch categorize(payload.Details.Type) {
		case "film":
			counters.Film++
			appendOrLog(category["film"], rec.Meta.IndexNum, rec)
		case "tv":
			counters.TV++
			appendOrLog(category["tv"], rec.Meta.IndexNum, rec)
		default:
			counters.Other++
			appendOrLog(category["other"], rec.Meta.IndexNum, rec)
		}

		if counters.Processed%500 == 0 {
			fmt.Printf("🔄 Partition: %d records routed\n", counters.Processed)
		}
	}
	if err := scanner.Err(); err != nil {
		return counters, fmt.Errorf("scan %s: %w", paths.Enriched, err)
	}

	fmt.Printf("📊 Partition Summary: %d clean (%d film, %d tv, %d other), %d low-confidence, %d errors\n",
		counters.Success, counters.Film, counters.TV, counters.Other, counters.LowConfidence, counters.Errors)
	return counters, nil
}

// appendOrLog writes a partition line and reports, rather than swallows, a
// failed write. The record is still counted; losing the line must at least
// leave a trace in the run log.
func appendOrLog(w *lineWriter, indexNum int, v interface{}) {
	if err := w.Append(v); err != nil {
		fmt.Printf("❌ Failed to write partition record %d: %v\n", indexNum, err)
	}
}

// categorize folds the source's type label into film/tv/other.
func categorize(typeLabel string) string {
	t := strings.ToLower(typeLabel)
	switch {
	case strings.Contains(t, "tv"), strings.Contains(t, "series"):
		return "tv"
	case strings.Contains(t, "film"), strings.Contains(t, "movie"):
		return "film"
	default:
		return "other"
	}
}
