package pipeline

import (
	"fmt"
	"sort"

	"go-title-enrich/internal/model"
	"go-title-enrich/internal/titles"
)

// Aggregate groups flat records by core title and folds each group into a
// single parent record. Running it again over its own output is a no-op:
// totals are always recomputed from the relationship rows, never carried.
func Aggregate(records []model.ContentRecord) []model.ContentRecord {
	groups := make(map[string]*model.ContentRecord)
	var order []string

	for i := range records {
		rec := &records[i]
		key := rec.Meta.CoreTitle
		parent, ok := groups[key]
		if !ok {
			// First record seen for a core title owns the group's identity.
			clone := *rec
			clone.Data.Relationships = append([]model.Relationship(nil), rec.Data.Relationships...)
			groups[key] = &clone
			order = append(order, key)
			continue
		}
		parent.Data.Relationships = append(parent.Data.Relationships, rec.Data.Relationships...)
	}

	out := make([]model.ContentRecord, 0, len(order))
	for i, key := range order {
		parent := groups[key]

		// Stable sort keeps input order for seasons that parse the same,
		// including titles with no season marker at all.
		sort.SliceStable(parent.Data.Relationships, func(a, b int) bool {
			return titles.SeasonNumber(parent.Data.Relationships[a].Title) <
				titles.SeasonNumber(parent.Data.Relationships[b].Title)
		})

		totals := model.Totals{}
		for _, rel := range parent.Data.Relationships {
			totals.ItemsInData++
			totals.TotalHoursWatched += rel.HoursWatched
		}
		parent.Data.Totals = totals

		// Reassigned so the enrichment cursor lines up with this file's
		// line order.
		parent.Meta.IndexNum = i
		out = append(out, *parent)
	}
	return out
}

// RunAggregate reads the flat record file, aggregates it and writes the
// sorted record file that enrichment consumes.
func RunAggregate(paths Paths) (int, error) {
	fmt.Println("📊 Starting aggregation stage...")
	flat, err := readRecords(paths.FlatRecords)
	if err != nil {
		return 0, err
	}

	sorted := Aggregate(flat)
	if err := writeRecords(paths.SortedRecords, sorted); err != nil {
		return 0, err
	}

	fmt.Printf("📊 Aggregation Summary: %d groups created from %d records\n", len(sorted), len(flat))
	return len(sorted), nil
}
