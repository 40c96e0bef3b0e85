package ingest

import (
	"context"
	"log/slog"

	"github.com/campusqa/forumsearch/internal/index"
	"github.com/campusqa/forumsearch/internal/search"
	"github.com/campusqa/forumsearch/pkg/kafka"
	"github.com/campusqa/forumsearch/pkg/resilience"
)

// HandleMessage returns a Kafka MessageHandler that indexes every PostEvent
// through the writer. Writes are retried briefly and then dropped: the
// handler never propagates an error, because a poisoned or unwritable event
// must not stall the topic. If cache is non-nil, the search cache is
// invalidated after each successful write.
func HandleMessage(writer *index.Writer, cache *search.Cache) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-worker")
	retryCfg := resilience.RetryConfig{MaxAttempts: 3}
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[PostEvent](value)
		if err != nil {
			logger.Error("failed to decode post event", "key", string(key), "error", err)
			return nil
		}
		if event.PostID == 0 {
			logger.Warn("post event missing post id, skipping")
			return nil
		}

		err = resilience.Retry(ctx, "index-post", retryCfg, func() error {
			return writer.Index(ctx, event.PostID, event.Title, event.Body)
		})
		if err != nil {
			logger.Error("index write dropped after retries", "post_id", event.PostID, "error", err)
			return nil
		}

		if cache != nil {
			if err := cache.Invalidate(ctx); err != nil {
				logger.Error("cache invalidation failed", "error", err)
			}
		}
		logger.Info("post indexed", "post_id", event.PostID)
		return nil
	}
}
