package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published on the bus. Payload holds one of the
// *Event structs from types.go, by value.
type Event struct {
	ID        string
	Type      EventType
	SessionID string
	Timestamp time.Time
	Payload   any
}

// New stamps an event with a fresh ID and the current time.
func New(t EventType, sessionID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
