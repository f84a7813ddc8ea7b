package model

import (
	"encoding/json"
	"fmt"
)

// Meta carries the identity of one title-bearing unit of work. ContentUUID
// is assigned at creation and immutable; IndexNum is the position in the
// ordered input and doubles as the resumption cursor.
type Meta struct {
	ContentUUID            string `json:"contentUUID"`
	IndexNum               int    `json:"indexNum"`
	RawTitle               string `json:"rawTitle"`
	CleanTitle             string `json:"cleanTitle"`
	CoreTitle              string `json:"coreTitle"`
	SecondaryLanguageTitle string `json:"secondaryLanguageTitle,omitempty"`
}

// Totals are recomputed by the aggregator from the final relationship
// sequence, never mutated anywhere else.
type Totals struct {
	ItemsInData       int     `json:"itemsInData"`
	TotalHoursWatched float64 `json:"totalHoursWatched"`
}

// Relationship is one raw input row folded under a parent record. The
// sequence on a record is ordered by season number (stable, ascending).
type Relationship struct {
	ItemUUID          string  `json:"itemUUID"`
	Title             string  `json:"title"`
	AvailableGlobally bool    `json:"availableGlobally"`
	HoursWatched      float64 `json:"hoursWatched"`
	ReleaseDate       string  `json:"releaseDate"`
}

// RecordData holds the mutable part of a record. Sources maps a source name
// (e.g. "imdb", "boxoffice") to that source's enrichment payload; a payload
// is absent until a successful fetch and is overwritten, never duplicated,
// on re-enrichment.
type RecordData struct {
	Totals        Totals                     `json:"totals"`
	Relationships []Relationship             `json:"relationships"`
	Sources       map[string]json.RawMessage `json:"sources"`
}

// ContentRecord is one line of the flat and aggregated JSONL streams.
type ContentRecord struct {
	Meta Meta       `json:"meta"`
	Data RecordData `json:"data"`
}

// SetSource stores an enrichment payload under the given source name,
// replacing any previous payload for that source.
func (r *ContentRecord) SetSource(name string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}
	if r.Data.Sources == nil {
		r.Data.Sources = make(map[string]json.RawMessage)
	}
	r.Data.Sources[name] = raw
	return nil
}

// Source unmarshals the payload stored under name into out. The second
// return value is false when the record has no payload for that source.
func (r *ContentRecord) Source(name string, out interface{}) (bool, error) {
	raw, ok := r.Data.Sources[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal %s payload: %w", name, err)
	}
	return true, nil
}
