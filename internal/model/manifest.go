package model

import "go-title-enrich/internal/dates"

// ManifestEntry is one append-only line in the processed-record manifest,
// the sole source of truth for resumption. Entries may land out of order
// within a batch; the resume cursor is the maximum IndexNum seen, not the
// last line.
type ManifestEntry struct {
	Status          MatchStatus `json:"status"`
	IndexNum        int         `json:"indexNum"`
	CoreTitle       string      `json:"coreTitle"`
	MatchConfidence float64     `json:"matchConfidence"`
	SourceLink      string      `json:"sourceLink,omitempty"`
}

// MinimalRecord is the audit projection written alongside the full output:
// just enough to eyeball a run without loading the enriched records.
type MinimalRecord struct {
	Status          MatchStatus `json:"status"`
	IndexNum        int         `json:"indexNum"`
	CoreTitle       string      `json:"coreTitle"`
	SourceLink      string      `json:"sourceLink,omitempty"`
	MatchedTitle    string      `json:"matchedTitle,omitempty"`
	MatchConfidence float64     `json:"matchConfidence"`
	ReleaseDate     dates.Shape `json:"releaseDate"`
	Type            string      `json:"type,omitempty"`
}

// ErrorRecord is one line in the error partition. The original record is
// always echoed back so a failed item can be reprocessed offline.
type ErrorRecord struct {
	IndexNum   int            `json:"indexNum"`
	CoreTitle  string         `json:"coreTitle"`
	Status     MatchStatus    `json:"status"`
	Message    string         `json:"message"`
	RetryCount int            `json:"retryCount,omitempty"`
	Record     *ContentRecord `json:"record,omitempty"`
}

// BoxOfficeRow is one row of the paged budget table.
type BoxOfficeRow struct {
	RowUUID     string `json:"rowUUID"`
	Rank        string `json:"rank"`
	ReleaseDate string `json:"releaseDate"`
	Title       string `json:"title"`
	TitleURL    string `json:"titleUrl"`
	ProdBudget  string `json:"prodBudget"`
	DomGross    string `json:"domGross"`
	WorldGross  string `json:"worldGross"`
}
