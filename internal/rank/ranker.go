// Package rank executes search predicates against the inverted index and
// slices the ranked matches into pages.
package rank

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campusqa/forumsearch/internal/forum"
	"github.com/campusqa/forumsearch/internal/index"
	"github.com/campusqa/forumsearch/internal/query"
)

// Ranker runs the two query shapes against a Store: weighted ranking when a
// text predicate exists, recency ordering when the search is filters-only.
type Ranker struct {
	store      index.Store
	perPage    int
	maxResults int
	logger     *slog.Logger
}

// New creates a Ranker. perPage is the page size; maxResults caps how many
// matches are counted and reachable through pagination.
func New(store index.Store, perPage, maxResults int) *Ranker {
	return &Ranker{
		store:      store,
		perPage:    perPage,
		maxResults: maxResults,
		logger:     slog.Default().With("component", "ranker"),
	}
}

// Search executes the predicate and filters and returns the requested page.
// Ranked results are ordered by the sum of posting weights over the matched
// stems; filters-only results are ordered most recent first. The total match
// count comes from an independent count query capped at maxResults, so pages
// past the cap come back empty rather than erroring.
func (r *Ranker) Search(ctx context.Context, pred *query.Predicate, f forum.Filters, page int) (*forum.ResultPage, error) {
	page = CoercePage(page)
	offset := Offset(page, r.perPage)

	var (
		total int
		err   error
	)
	if pred == nil {
		total, err = r.store.CountRecent(ctx, f, r.maxResults)
	} else {
		total, err = r.store.CountRanked(ctx, pred.Stems, f, r.maxResults)
	}
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}

	// Matches beyond the cap are unreachable; skip the page query when the
	// slice falls entirely past the counted total.
	limit := r.perPage
	if offset+limit > total {
		limit = total - offset
	}

	var results []forum.Post
	if limit <= 0 {
		results = []forum.Post{}
	} else if pred == nil {
		results, err = r.store.SearchRecent(ctx, f, limit, offset)
	} else {
		results, err = r.store.SearchRanked(ctx, pred.Stems, f, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	info := Paginate(total, page, r.perPage)
	return &forum.ResultPage{
		Results:      results,
		TotalMatches: total,
		OnThisPage:   len(results),
		Page:         info.Page,
		NextPage:     info.NextPage,
		PrevPage:     info.PrevPage,
	}, nil
}
