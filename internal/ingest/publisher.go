package ingest

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/campusqa/forumsearch/pkg/kafka"
)

// Publisher emits PostEvents to the index topic. It satisfies the same
// IndexPost shape as the in-process search service, so deployments can swap
// direct indexing for the Kafka pipeline without touching callers.
type Publisher struct {
	producer *kafka.Producer
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPublisher creates a Publisher on the given producer.
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		timeout:  10 * time.Second,
		logger:   slog.Default().With("component", "ingest-publisher"),
	}
}

// IndexPost publishes a PostEvent and returns immediately. Publish failures
// are logged and the event is dropped; indexing is best-effort and must
// never block or fail the post-creation flow.
func (p *Publisher) IndexPost(postID int64, title, body string) {
	event := PostEvent{
		PostID:      postID,
		Title:       title,
		Body:        body,
		SubmittedAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		err := p.producer.Publish(ctx, kafka.Event{
			Key:   strconv.FormatInt(postID, 10),
			Value: event,
		})
		if err != nil {
			p.logger.Error("index event dropped", "post_id", postID, "error", err)
		}
	}()
}
