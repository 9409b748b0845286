package domain

import "time"

// Topic is a named event channel that connections join and leave.
type Topic string

const (
	// Mutation broadcast topics; every connection is attached on connect.
	TopicChannel Topic = "channel"
	TopicUser    Topic = "user"

	// Periodic telemetry topics; joined explicitly via subscribe events.
	TopicStats       Topic = "stats"
	TopicChannelFeed Topic = "channels"
)

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
	EventUpdate  EventKind = "update"
)

// Event is an immutable broadcast unit. Delivery is best-effort and never
// replayed to late subscribers.
type Event struct {
	Topic     Topic       `json:"-"`
	Kind      EventKind   `json:"-"`
	Payload   interface{} `json:"data"`
	EmittedAt time.Time   `json:"timestamp"`
}

// Name is the wire event name, e.g. "channel:created" or "stats:update".
func (e Event) Name() string {
	return string(e.Topic) + ":" + string(e.Kind)
}

func NewEvent(topic Topic, kind EventKind, payload interface{}) Event {
	return Event{
		Topic:     topic,
		Kind:      kind,
		Payload:   payload,
		EmittedAt: time.Now(),
	}
}
