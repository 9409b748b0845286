package realtime

import (
	"sync"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"

	"go.uber.org/zap"
)

// ConnID identifies a websocket connection for the lifetime of its socket.
type ConnID string

// Frame is the wire unit written to clients: an event name plus payload.
type Frame struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Metrics receives hub activity. Implemented by the Prometheus collector;
// a nil Metrics disables recording.
type Metrics interface {
	RecordClientConnected()
	RecordClientDisconnected()
	RecordEventPublished(topic, kind string)
	RecordFrameDropped()
}

type subscriber struct {
	sink   chan<- Frame
	topics map[domain.Topic]struct{}
}

// EventBus is the in-process fan-out hub. Connections attach a buffered sink
// once, then join and leave topics; Publish delivers to current subscribers
// in attach order. Delivery is fire-and-forget: a full sink drops the frame.
type EventBus struct {
	mu    sync.RWMutex
	conns map[ConnID]*subscriber
	order []ConnID

	published uint64
	dropped   uint64

	metrics Metrics
	logger  *zap.SugaredLogger
}

var _ ports.EventPublisher = (*EventBus)(nil)

func NewEventBus(metrics Metrics, logger *zap.SugaredLogger) *EventBus {
	return &EventBus{
		conns:   make(map[ConnID]*subscriber),
		metrics: metrics,
		logger:  logger,
	}
}

// Attach registers a connection sink. Attaching an already-attached
// connection replaces its sink and clears its memberships.
func (b *EventBus) Attach(id ConnID, sink chan<- Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.conns[id]; !exists {
		b.order = append(b.order, id)
		if b.metrics != nil {
			b.metrics.RecordClientConnected()
		}
	}
	b.conns[id] = &subscriber{
		sink:   sink,
		topics: make(map[domain.Topic]struct{}),
	}
}

// Detach removes the connection and all its memberships. Unknown ids are a
// no-op.
func (b *EventBus) Detach(id ConnID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.conns[id]; !exists {
		return
	}
	delete(b.conns, id)
	for i, other := range b.order {
		if other == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	if b.metrics != nil {
		b.metrics.RecordClientDisconnected()
	}
}

// Subscribe joins the connection to a topic. Idempotent; unknown connections
// are ignored.
func (b *EventBus) Subscribe(id ConnID, topic domain.Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, exists := b.conns[id]; exists {
		sub.topics[topic] = struct{}{}
	}
}

// Unsubscribe removes the connection from a topic. Idempotent.
func (b *EventBus) Unsubscribe(id ConnID, topic domain.Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, exists := b.conns[id]; exists {
		delete(sub.topics, topic)
	}
}

// Publish fans an event out to every subscriber of its topic, in attach
// order. Zero subscribers is a no-op. Publish never blocks the caller.
func (b *EventBus) Publish(event domain.Event) {
	frame := Frame{
		Event:     event.Name(),
		Data:      event.Payload,
		Timestamp: event.EmittedAt,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.published++
	if b.metrics != nil {
		b.metrics.RecordEventPublished(string(event.Topic), string(event.Kind))
	}
	for _, id := range b.order {
		sub := b.conns[id]
		if _, joined := sub.topics[event.Topic]; !joined {
			continue
		}
		select {
		case sub.sink <- frame:
		default:
			b.dropped++
			if b.metrics != nil {
				b.metrics.RecordFrameDropped()
			}
			b.logger.Warnw("Dropping frame for slow consumer", "conn_id", id, "event", frame.Event)
		}
	}
}

// Send delivers a frame to a single connection, bypassing topic membership.
// Periodic tasks use it so each subscriber gets its own snapshot stream.
func (b *EventBus) Send(id ConnID, frame Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, exists := b.conns[id]
	if !exists {
		return
	}
	select {
	case sub.sink <- frame:
	default:
		b.dropped++
		if b.metrics != nil {
			b.metrics.RecordFrameDropped()
		}
		b.logger.Warnw("Dropping frame for slow consumer", "conn_id", id, "event", frame.Event)
	}
}

// Stats reports hub counters for health and metrics surfaces.
func (b *EventBus) Stats() (connections int, published, dropped uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns), b.published, b.dropped
}
