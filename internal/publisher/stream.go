package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utakatalp/virtual-football/internal/events"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

const publishTimeout = 2 * time.Second

// StreamPublisher publishes league activity to Redis streams, one stream per session
type StreamPublisher struct {
	client redis.Cmdable
	prefix string
	worker *events.Worker
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client redis.Cmdable, prefix string) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		prefix: prefix,
	}
}

// Attach subscribes the publisher to rounds and results on the bus. XAdds
// run on a worker goroutine; when its queue of size queue is full, events
// are dropped and counted as publish errors.
func (p *StreamPublisher) Attach(bus *events.Bus, queue int) {
	p.worker = events.NewWorker("publisher", queue, p.handle, telemetry.Metrics.PublishErrors.Inc)
	bus.SubscribeAll(p.worker.Handle, events.EventRoundGenerated, events.EventMatchPlayed)
}

// Close flushes queued events. Safe to call when never attached.
func (p *StreamPublisher) Close() {
	if p.worker != nil {
		p.worker.Close()
	}
}

// StreamKey is the stream a session's events are written to.
func (p *StreamPublisher) StreamKey(sessionID string) string {
	return fmt.Sprintf("%s.%s", p.prefix, sessionID)
}

func (p *StreamPublisher) handle(e events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, e); err != nil {
		telemetry.Metrics.PublishErrors.Inc()
		return err
	}
	return nil
}

// Publish writes one event to its session stream.
func (p *StreamPublisher) Publish(ctx context.Context, e events.Event) error {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", e.Type, err)
	}

	values := map[string]interface{}{
		"data":     string(data),
		"type":     string(e.Type),
		"event_id": e.ID,
	}
	switch pl := e.Payload.(type) {
	case events.MatchPlayedEvent:
		values["round"] = pl.Round
	case events.RoundGeneratedEvent:
		values["round"] = pl.Round
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.StreamKey(e.SessionID),
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", e.Type, err)
	}
	return nil
}
