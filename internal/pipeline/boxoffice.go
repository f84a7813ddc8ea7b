package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-title-enrich/internal/model"
)

// BudgetSource is the slice of the box-office client this stage needs.
type BudgetSource interface {
	FetchPage(ctx context.Context, page int) ([]model.BoxOfficeRow, error)
}

// pageDelay spaces out budget-table page fetches.
const pageDelay = 1 * time.Second

// RunBoxOffice scrapes the paged budget table into paths.BoxOffice,
// replacing any previous scrape. Paging stops at the first empty page or
// at maxPages (0 means no cap). Each page fetch runs under the standard
// retry policy.
func RunBoxOffice(ctx context.Context, src BudgetSource, paths Paths, maxPages int) (int, error) {
	fmt.Println("🚀 Starting box-office scrape")
	if err := paths.Ensure(); err != nil {
		return 0, err
	}
	if err := os.RemoveAll(paths.BoxOffice); err != nil {
		return 0, fmt.Errorf("reset %s: %w", paths.BoxOffice, err)
	}

	out, err := openLineWriter(paths.BoxOffice)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	policy := DefaultRetryPolicy
	var gate cooldownGate
	total := 0
	for page := 1; maxPages == 0 || page <= maxPages; page++ {
		var rows []model.BoxOfficeRow
		_, err := policy.Do(ctx, &gate, func() error {
			r, ferr := src.FetchPage(ctx, page)
			if ferr != nil {
				return ferr
			}
			rows = r
			return nil
		})
		if err != nil {
			return total, fmt.Errorf("fetch budget page %d: %w", page, err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			if err := out.Append(row); err != nil {
				return total, err
			}
		}
		total += len(rows)
		fmt.Printf("📄 Budget page %d: %d rows (%d total)\n", page, len(rows), total)

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(pageDelay):
		}
	}

	fmt.Printf("🏁 Box-office scrape done: %d rows in %s\n", total, paths.BoxOffice)
	return total, nil
}
