package model

import "go-title-enrich/internal/dates"

// MatchStatus is the terminal outcome of resolving one record against an
// external source.
type MatchStatus string

const (
	StatusSuccess       MatchStatus = "success"
	StatusLowConfidence MatchStatus = "low-confidence"
	StatusNoResult      MatchStatus = "no-result"
	StatusError         MatchStatus = "error"
)

// Candidate is the zero-or-one search hit a source returns for a query.
type Candidate struct {
	MatchedTitle    string      `json:"matchedTitle"`
	SourceID        string      `json:"sourceId"`
	SourceLink      string      `json:"sourceLink"`
	ReleaseDateText string      `json:"releaseDateText"`
	TypeHint        string      `json:"typeHint"`
	Dates           dates.Shape `json:"dates"`
}

// UserRating is the aggregate user score scraped from a title page. Fields
// that are missing on the page stay empty.
type UserRating struct {
	Rating     string `json:"rating"`
	NumRatings string `json:"numRatings"`
	OutOf      string `json:"outOf"`
}

// Detail is the full-page enrichment for a matched title.
type Detail struct {
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Genres        []string    `json:"genres"`
	Length        string      `json:"length,omitempty"`
	Dates         dates.Shape `json:"dates"`
	Type          string      `json:"type"`
	ContentRating string      `json:"contentRating,omitempty"`
	Cover         string      `json:"cover,omitempty"`
	UserRating    UserRating  `json:"userRating"`
}

// CreditYears is the active year range parsed from a credit line like
// "(72 episodes, 2014-2019)".
type CreditYears struct {
	Start string `json:"dateStart,omitempty"`
	End   string `json:"dateEnd,omitempty"`
}

// PersonCredit is one cast or crew member under a credit category.
type PersonCredit struct {
	UUID        string      `json:"uuid"`
	Name        string      `json:"name"`
	SourceLink  string      `json:"sourceLink"`
	Role        string      `json:"role,omitempty"`
	Character   string      `json:"character,omitempty"`
	NumEpisodes int         `json:"numEpisodes"`
	Years       CreditYears `json:"years"`
}

// CreditGroups maps a category header (directors, writers, cast, producers,
// other crew) to its credits, in page order.
type CreditGroups map[string][]PersonCredit

// SourcePayload is what gets merged under ContentRecord sources on a
// successful (or low-confidence) match. Details and Credits are only
// populated when the confidence cleared the enrichment threshold.
type SourcePayload struct {
	MatchedTitle    string       `json:"matchedTitle"`
	MatchConfidence float64      `json:"matchConfidence"`
	SourceLink      string       `json:"sourceLink"`
	Details         Detail       `json:"details"`
	Credits         CreditGroups `json:"castCrew,omitempty"`
}

// MatchResult is the outcome of one record's trip through search, scoring
// and optional enrichment. Payload is nil unless Status is success or
// low-confidence; full detail inside it requires success.
type MatchResult struct {
	Status          MatchStatus    `json:"status"`
	Query           string         `json:"query"`
	MatchedTitle    string         `json:"matchedTitle,omitempty"`
	MatchConfidence float64        `json:"matchConfidence"`
	SourceLink      string         `json:"sourceLink,omitempty"`
	Payload         *SourcePayload `json:"payload,omitempty"`
	Message         string         `json:"message,omitempty"`
}
