// Package ingest carries index writes over Kafka: the forum application
// publishes a PostEvent after a post insert commits, and the index worker
// consumes the topic and writes postings. This keeps the fire-and-forget
// indexing contract across process boundaries.
package ingest

import "time"

// PostEvent is the Kafka message payload produced after a question, answer,
// or edit appendage is persisted by the content store.
type PostEvent struct {
	PostID      int64     `json:"post_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
}
