package pipeline

import (
	"reflect"
	"testing"

	"go-title-enrich/internal/model"
	"go-title-enrich/internal/titles"
)

func flatRecord(index int, rawTitle string, hours float64) model.ContentRecord {
	return model.ContentRecord{
		Meta: model.Meta{
			ContentUUID: "uuid-" + rawTitle,
			IndexNum:    index,
			RawTitle:    rawTitle,
			CleanTitle:  titles.Clean(rawTitle),
			CoreTitle:   titles.Core(rawTitle),
		},
		Data: model.RecordData{
			Totals: model.Totals{ItemsInData: 1, TotalHoursWatched: hours},
			Relationships: []model.Relationship{{
				ItemUUID:     "item-" + rawTitle,
				Title:        titles.Clean(rawTitle),
				HoursWatched: hours,
			}},
		},
	}
}

func TestAggregateGroupsByCoreTitle(t *testing.T) {
	flat := []model.ContentRecord{
		flatRecord(0, "Show Name: Season 2", 1234),
		flatRecord(1, "Other Thing", 10),
		flatRecord(2, "Show Name: Season 1", 100),
	}

	out := Aggregate(flat)
	if len(out) != 2 {
		t.Fatalf("groups = %d, want 2", len(out))
	}

	show := out[0]
	if show.Meta.CoreTitle != "Show Name" {
		t.Errorf("coreTitle = %q", show.Meta.CoreTitle)
	}
	if show.Meta.IndexNum != 0 || out[1].Meta.IndexNum != 1 {
		t.Errorf("index numbers not reassigned: %d, %d", show.Meta.IndexNum, out[1].Meta.IndexNum)
	}

	// Seasons sorted ascending even though season 2 arrived first.
	rels := show.Data.Relationships
	if len(rels) != 2 {
		t.Fatalf("relationships = %d, want 2", len(rels))
	}
	if rels[0].Title != "Show Name: Season 1" || rels[1].Title != "Show Name: Season 2" {
		t.Errorf("relationship order = %q, %q", rels[0].Title, rels[1].Title)
	}

	if show.Data.Totals.ItemsInData != 2 || show.Data.Totals.TotalHoursWatched != 1334 {
		t.Errorf("totals = %+v", show.Data.Totals)
	}
}

func TestAggregateKeepsFirstSeenIdentity(t *testing.T) {
	flat := []model.ContentRecord{
		flatRecord(0, "Show Name: Season 2", 5),
		flatRecord(1, "Show Name: Season 1", 5),
	}
	out := Aggregate(flat)
	if len(out) != 1 {
		t.Fatalf("groups = %d, want 1", len(out))
	}
	if out[0].Meta.ContentUUID != "uuid-Show Name: Season 2" {
		t.Errorf("group identity = %q, want first-seen record's", out[0].Meta.ContentUUID)
	}
}

func TestAggregateStableForEqualSeasons(t *testing.T) {
	// Two rows with the same core title and no season marker both parse as
	// season 0; the stable sort must keep their input order.
	first := flatRecord(0, "Show Name", 1)
	first.Data.Relationships[0].ItemUUID = "item-first"
	second := flatRecord(1, "Show Name", 2)
	second.Data.Relationships[0].ItemUUID = "item-second"

	out := Aggregate([]model.ContentRecord{first, second})
	if len(out) != 1 {
		t.Fatalf("groups = %d, want 1", len(out))
	}
	rels := out[0].Data.Relationships
	if len(rels) != 2 {
		t.Fatalf("relationships = %d, want 2", len(rels))
	}
	if rels[0].ItemUUID != "item-first" || rels[1].ItemUUID != "item-second" {
		t.Errorf("order not stable: %q, %q", rels[0].ItemUUID, rels[1].ItemUUID)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	flat := []model.ContentRecord{
		flatRecord(0, "Show Name: Season 2", 1234),
		flatRecord(1, "Show Name: Season 1", 100),
		flatRecord(2, "Other Thing", 10),
	}
	once := Aggregate(flat)
	twice := Aggregate(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("aggregation not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
