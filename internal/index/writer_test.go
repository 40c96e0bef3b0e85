package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermWeights(t *testing.T) {
	weights := TermWeights([]string{"dog", "dog", "dog", "cat", "bird", "bird"})
	require.Len(t, weights, 3)
	assert.Equal(t, 1.0, weights["dog"])
	assert.InDelta(t, 2.0/3.0, weights["bird"], 1e-9)
	assert.InDelta(t, 1.0/3.0, weights["cat"], 1e-9)
}

func TestTermWeightsMostFrequentAlwaysOne(t *testing.T) {
	weights := TermWeights([]string{"solo"})
	assert.Equal(t, 1.0, weights["solo"])

	weights = TermWeights([]string{"a", "b", "c"})
	for stem, w := range weights {
		assert.Equal(t, 1.0, w, "stem %q", stem)
	}
}

func TestWriterIndex(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store)

	err := w.Index(context.Background(), 7, "Library opening hours", "hours hours hours posted")
	require.NoError(t, err)

	weight, ok := store.Postings("hour", 7)
	require.True(t, ok)
	assert.Equal(t, 1.0, weight)

	weight, ok = store.Postings("librari", 7)
	require.True(t, ok)
	assert.InDelta(t, 0.25, weight, 1e-9)
}

func TestWriterIndexEmptyTextIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store)

	require.NoError(t, w.Index(context.Background(), 3, "", "the and of 12345"))
	_, ok := store.Postings("the", 3)
	assert.False(t, ok)
}

func TestWriterIndexFragmentsAreAdditive(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store)

	require.NoError(t, w.Index(context.Background(), 9, "", "printer broken"))
	require.NoError(t, w.Index(context.Background(), 9, "", "edit fixed itself"))

	// Stems from the first fragment survive the second write.
	_, ok := store.Postings("printer", 9)
	assert.True(t, ok)
	_, ok = store.Postings("fix", 9)
	assert.True(t, ok)
}

func TestWriterIndexLastWriterWinsPerStem(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store)

	require.NoError(t, w.Index(context.Background(), 4, "", "wifi wifi dorm"))
	weight, _ := store.Postings("dorm", 4)
	assert.InDelta(t, 0.5, weight, 1e-9)

	// A later fragment where "dorm" is the dominant stem overwrites its
	// posting weight for this post.
	require.NoError(t, w.Index(context.Background(), 4, "", "dorm dorm wifi"))
	weight, _ = store.Postings("dorm", 4)
	assert.Equal(t, 1.0, weight)
	weight, _ = store.Postings("wifi", 4)
	assert.InDelta(t, 0.5, weight, 1e-9)
}
