package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"go-title-enrich/internal/model"
	"go-title-enrich/internal/titles"
	"go-title-enrich/pkg/utils"
)

// Expected columns of the viewing report CSV. Header matching is
// case-insensitive and ignores surrounding quotes.
const (
	colTitle       = "title"
	colAvailable   = "available globally?"
	colReleaseDate = "release date"
	colHours       = "hours viewed"
)

// Ingest reads the raw viewing report CSV and writes one flat record per
// row to paths.FlatRecords. IndexNum is assigned here, in row order, and
// never changes afterwards.
func Ingest(ctx context.Context, csvPath string, paths Paths) (int, error) {
	fmt.Printf("➡️ Starting ingestion for source: %s\n", csvPath)

	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read CSV header: %w", err)
	}

	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		clean := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(h, `"`, "")))
		cols[clean] = i
	}
	titleCol, ok := cols[colTitle]
	if !ok {
		return 0, fmt.Errorf("CSV is missing a %q column", colTitle)
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []model.ContentRecord
	indexNum := 0
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("CSV read error at row %d: %w", indexNum+1, err)
		}

		rawTitle := strings.TrimSpace(row[titleCol])
		if rawTitle == "" {
			continue
		}

		hours := utils.ParseHours(cell(row, colHours))
		secondary, _ := titles.SecondaryLanguageTitle(rawTitle)
		rec := model.ContentRecord{
			Meta: model.Meta{
				ContentUUID:            uuid.New().String(),
				IndexNum:               indexNum,
				RawTitle:               rawTitle,
				CleanTitle:             titles.Clean(rawTitle),
				CoreTitle:              titles.Core(rawTitle),
				SecondaryLanguageTitle: secondary,
			},
			Data: model.RecordData{
				Totals: model.Totals{ItemsInData: 1, TotalHoursWatched: hours},
				Relationships: []model.Relationship{{
					ItemUUID:          uuid.New().String(),
					Title:             titles.Clean(rawTitle),
					AvailableGlobally: utils.ParseBool(cell(row, colAvailable)),
					HoursWatched:      hours,
					ReleaseDate:       cell(row, colReleaseDate),
				}},
			},
		}
		records = append(records, rec)
		indexNum++

		if indexNum%500 == 0 {
			fmt.Printf("📄 CSV: Processed %d rows from %s\n", indexNum, csvPath)
		}
	}

	if err := writeRecords(paths.FlatRecords, records); err != nil {
		return 0, err
	}
	fmt.Printf("✅ Finished ingestion: %d records written to %s\n", len(records), paths.FlatRecords)
	return len(records), nil
}
