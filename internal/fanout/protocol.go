package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/utakatalp/virtual-football/internal/events"
)

// TypeCommentary marks a single paced commentary line.
const TypeCommentary = "commentary"

// Envelope is the wire format for events sent over the live feed.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	SessionID string          `json:"session_id"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// CommentaryLine is the payload of a commentary envelope.
type CommentaryLine struct {
	Round int    `json:"round"`
	Home  string `json:"home"`
	Away  string `json:"away"`
	Index int    `json:"index"`
	Line  string `json:"line"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		SessionID: evt.SessionID,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	})
}

func marshalCommentary(sessionID string, c CommentaryLine) ([]byte, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal commentary: %w", err)
	}
	return json.Marshal(Envelope{
		Type:      TypeCommentary,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// UnmarshalEnvelope is the client-side decoder of the feed: it decodes an
// envelope and, for known types, its payload. The server only encodes; Go
// consumers of /ws use this to get typed events back.
func UnmarshalEnvelope(data []byte) (Envelope, any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	var payload any
	switch env.Type {
	case string(events.EventMatchPlayed):
		payload = &events.MatchPlayedEvent{}
	case string(events.EventRoundGenerated):
		payload = &events.RoundGeneratedEvent{}
	case string(events.EventBetPlaced):
		payload = &events.BetPlacedEvent{}
	case string(events.EventSlipCleared):
		payload = &events.SlipClearedEvent{}
	case string(events.EventSessionClosed):
		payload = &events.SessionClosedEvent{}
	case TypeCommentary:
		payload = &CommentaryLine{}
	default:
		return env, nil, fmt.Errorf("unknown envelope type: %s", env.Type)
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return env, nil, fmt.Errorf("unmarshal %s: %w", env.Type, err)
	}
	return env, payload, nil
}
