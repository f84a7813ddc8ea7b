package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"go-title-enrich/internal/model"
	"go-title-enrich/pkg/utils"
)

// Combine joins the film partition against the scraped budget table and
// writes the matched records, with the box-office row merged in as an
// extra source, to paths.Combined. The join key is the folded title so
// punctuation and casing differences between the two datasets don't matter.
func Combine(paths Paths) (int, error) {
	fmt.Println("🚀 Starting combine pass")

	budgets, err := readBudgetRows(paths.BoxOffice)
	if err != nil {
		return 0, err
	}
	if len(budgets) == 0 {
		return 0, fmt.Errorf("no budget rows in %s; run the box-office scrape first", paths.BoxOffice)
	}

	byTitle := make(map[string]model.BoxOfficeRow, len(budgets))
	for _, row := range budgets {
		key := utils.FoldTitle(row.Title)
		if key == "" {
			continue
		}
		// First occurrence wins; the table lists remakes under the same
		// name and the earlier row ranks higher.
		if _, seen := byTitle[key]; !seen {
			byTitle[key] = row
		}
	}

	films, err := readRecords(paths.Film)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(paths.Combined)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", paths.Combined, err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)

	matched := 0
	for i := range films {
		rec := &films[i]
		row, ok := byTitle[utils.FoldTitle(rec.Meta.CleanTitle)]
		if !ok {
			continue
		}
		if err := rec.SetSource("boxoffice", row); err != nil {
			return matched, err
		}
		if err := enc.Encode(rec); err != nil {
			return matched, fmt.Errorf("write %s: %w", paths.Combined, err)
		}
		matched++
	}

	fmt.Printf("📊 Combine Summary: %d of %d films matched against %d budget rows\n",
		matched, len(films), len(budgets))
	return matched, nil
}

func readBudgetRows(path string) ([]model.BoxOfficeRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []model.BoxOfficeRow
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row model.BoxOfficeRow
		if err := json.Unmarshal(line, &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return rows, nil
}
