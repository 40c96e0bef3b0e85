// Package index maintains the inverted stem → post index. The Writer turns a
// post's text into weighted postings; Store implementations persist them and
// serve the ranked read side.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campusqa/forumsearch/internal/textnorm"
)

// Writer computes term weights for a document fragment and upserts the
// resulting postings.
type Writer struct {
	store  Store
	logger *slog.Logger
}

// NewWriter creates a Writer backed by the given store.
func NewWriter(store Store) *Writer {
	return &Writer{
		store:  store,
		logger: slog.Default().With("component", "index-writer"),
	}
}

// Index normalizes title and body, computes per-stem weights, and upserts
// postings for the post. A text that normalizes to zero stems is a no-op.
//
// Each call is independent and additive: an edit appendage is indexed as its
// own fragment, overwriting weights for the stems it touches and leaving
// postings from earlier fragments in place.
func (w *Writer) Index(ctx context.Context, postID int64, title, body string) error {
	stems := textnorm.Normalize(title + " " + body)
	if len(stems) == 0 {
		return nil
	}
	weights := TermWeights(stems)
	if err := w.store.UpsertPostings(ctx, postID, weights); err != nil {
		return fmt.Errorf("upserting postings for post %d: %w", postID, err)
	}
	w.logger.Debug("post indexed", "post_id", postID, "stems", len(weights), "tokens", len(stems))
	return nil
}

// TermWeights maps each distinct stem to its frequency divided by the
// maximum frequency among all stems in the sequence. The most frequent stem
// always gets weight 1.0; every weight lies in (0, 1].
func TermWeights(stems []string) map[string]float64 {
	freq := make(map[string]int, len(stems))
	for _, s := range stems {
		freq[s]++
	}
	maxFreq := 0
	for _, n := range freq {
		if n > maxFreq {
			maxFreq = n
		}
	}
	weights := make(map[string]float64, len(freq))
	for s, n := range freq {
		weights[s] = float64(n) / float64(maxFreq)
	}
	return weights
}
