package events

import (
	"context"
	"log/slog"

	"github.com/campusqa/forumsearch/pkg/kafka"
)

// Collector buffers search events in a channel and publishes them to Kafka
// from a single background goroutine. Track never blocks; events are dropped
// when the buffer is full.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan SearchEvent
	logger   *slog.Logger
	done     chan struct{}
}

// NewCollector creates a Collector with the given buffer size.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan SearchEvent, bufferSize),
		logger:   slog.Default().With("component", "event-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop. It drains until Close is called or ctx is
// cancelled.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				if err := c.producer.Publish(ctx, kafka.Event{
					Key:   "search",
					Value: event,
				}); err != nil {
					c.logger.Error("failed to publish search event", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Track enqueues an event for publishing, dropping it if the buffer is full.
func (c *Collector) Track(event SearchEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("event buffer full, dropping search event")
	}
}

// Close stops the publish loop after draining buffered events.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}
