package events

import (
	"time"
)

// Event is a notification about an engine write. Streams are keyed by job id.
type Event interface {
	Type() string
	StreamID() string
	Data() any
	Timestamp() time.Time
	Version() int
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

type BaseEvent struct {
	EventType    string
	Stream       string
	EventData    any
	EventTime    time.Time
	EventVersion int
}

func (e BaseEvent) Type() string { return e.EventType }
func (e BaseEvent) StreamID() string { return e.Stream }
func (e BaseEvent) Data() any { return e.EventData }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }
func (e BaseEvent) Version() int { return e.EventVersion }

func NewEvent(eventType, streamID string, data any) Event {
	return BaseEvent{
		EventType:    eventType,
		Stream:       streamID,
		EventData:    data,
		EventTime:    time.Now(),
		EventVersion: 1,
	}
}

// HandlerFunc adapts a function to EventHandler for every event type it is subscribed to
type HandlerFunc func(event Event) error

func (f HandlerFunc) Handle(event Event) error { return f(event) }
func (f HandlerFunc) CanHandle(eventType string) bool { return true }
