// Package analytics records site and chat events for later review.
package analytics

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event names recorded by the server itself.
const (
	EventChatMessageReceived  = "chat_message_received"
	EventLeadSubmittedSuccess = "lead_submitted_success"
	EventLeadSubmittedFailed  = "lead_submitted_failed"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrMissingEvent is returned when an event has no name.
var ErrMissingEvent = errors.New("analytics: missing event name")

// Event is one analytics record.
type Event struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
	Session   string         `json:"session,omitempty"`
}

// NewEvent stamps an event at the given time. Data is never nil.
func NewEvent(at time.Time, name string, data map[string]any, session string) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		Timestamp: at.UTC().Format(timestampLayout),
		Event:     name,
		Data:      data,
		Session:   session,
	}
}

// Validate requires an event name.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Event) == "" {
		return ErrMissingEvent
	}
	return nil
}

// Store persists events.
type Store interface {
	Record(ctx context.Context, evt Event) error
	List(ctx context.Context) ([]Event, error)
}

// Counter keeps running totals per event name.
type Counter interface {
	Incr(ctx context.Context, name string) error
	Counts(ctx context.Context) (map[string]int64, error)
}
