package index

import (
	"context"

	"github.com/campusqa/forumsearch/internal/forum"
)

// Store is the persisted inverted index behind a narrow read/write interface.
// The write side upserts weighted (stem, post) postings; the read side
// executes the two query shapes the ranker needs, joined against post
// metadata from the content store.
//
// Query stems match indexed stems by prefix: a query stem "quest" matches an
// indexed stem "question". Count queries cap the result at max to bound
// worst-case cost; matches beyond the cap are neither counted nor reachable.
type Store interface {
	// UpsertPostings writes one posting per stem for the given post,
	// creating missing terms lazily. Weights for stems already posted for
	// this post are overwritten; postings for other stems are left alone.
	UpsertPostings(ctx context.Context, postID int64, weights map[string]float64) error

	// SearchRanked returns posts matching any of the query stems and all
	// filters, ordered by descending summed posting weight (most recent
	// post first on ties), sliced to [offset, offset+limit).
	SearchRanked(ctx context.Context, stems []string, f forum.Filters, limit, offset int) ([]forum.Post, error)

	// CountRanked counts distinct posts matching the stems and filters,
	// capped at max.
	CountRanked(ctx context.Context, stems []string, f forum.Filters, max int) (int, error)

	// SearchRecent returns posts matching only the structural filters,
	// most recent first, sliced to [offset, offset+limit).
	SearchRecent(ctx context.Context, f forum.Filters, limit, offset int) ([]forum.Post, error)

	// CountRecent counts posts matching the filters, capped at max.
	CountRecent(ctx context.Context, f forum.Filters, max int) (int, error)
}
