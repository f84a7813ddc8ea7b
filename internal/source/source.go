package source

import (
	"context"

	"go-title-enrich/internal/model"
)

// Client is the contract the enrichment pipeline depends on. Implementations
// wrap one external metadata source; site-specific selector logic stays
// behind this interface.
type Client interface {
	// Name identifies the source; it becomes the key in a record's sources map.
	Name() string

	// Search returns the best candidate for a query, or nil (not an error)
	// when the source has no result.
	Search(ctx context.Context, query string) (*model.Candidate, error)

	// FetchDetail loads the full title page for a candidate link. Fields
	// missing on the page come back empty rather than failing the call;
	// only called when confidence cleared the enrichment threshold.
	FetchDetail(ctx context.Context, link string) (*model.Detail, error)

	// FetchCredits loads the credits page for a candidate link, grouped by
	// category (directors, writers, cast, producers, other crew).
	FetchCredits(ctx context.Context, link string) (model.CreditGroups, error)
}
