package events

import (
	"context"
	"time"
)

const (
	BraincellCreated = "BRAINCELL_CREATED"
	BraincellUpdated = "BRAINCELL_UPDATED"
	BraincellDeleted = "BRAINCELL_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "BRAINCELL_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher sends events to a bus. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event Event) error

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewBraincellEvent builds a braincell lifecycle event. The occurrence time is
// carried in the payload so consumers on the other side of a bus can read it.
func NewBraincellEvent(eventType, braincellId, userId, title string) BaseEvent {
	now := time.Now().UTC()
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"braincell_id": braincellId,
			"user_id":      userId,
			"title":        title,
			"occurred_at":  now.Format(time.RFC3339Nano),
		},
		OccurredAt: now,
	}
}

// FromPayload rebuilds an event received from a bus.
func FromPayload(eventType string, data map[string]interface{}) BaseEvent {
	occurredAt := time.Now().UTC()
	if raw, ok := data["occurred_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			occurredAt = t
		}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: occurredAt}
}

// Subscriber delivers events from a bus to a handler until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, handler EventHandler) error
}
