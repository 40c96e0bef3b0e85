package ingest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusqa/forumsearch/internal/index"
)

func TestHandleMessageIndexesPostEvent(t *testing.T) {
	store := index.NewMemoryStore()
	handler := HandleMessage(index.NewWriter(store), nil)

	payload, err := json.Marshal(PostEvent{
		PostID:      14,
		Title:       "Locker rental",
		Body:        "where do i rent a gym locker",
		SubmittedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), []byte("14"), payload))

	_, ok := store.Postings("locker", 14)
	assert.True(t, ok)
}

func TestHandleMessageToleratesBadPayloads(t *testing.T) {
	store := index.NewMemoryStore()
	handler := HandleMessage(index.NewWriter(store), nil)
	ctx := context.Background()

	// Neither a garbage payload nor a missing post id may surface an error,
	// or the consumer would stall on the message forever.
	assert.NoError(t, handler(ctx, nil, []byte("{broken")))
	assert.NoError(t, handler(ctx, nil, []byte(`{"title":"no id"}`)))

	_, ok := store.Postings("titl", 0)
	assert.False(t, ok)
}
