package realtime

import (
	"context"
	"sync"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/services"

	"go.uber.org/zap"
)

type taskKey struct {
	conn  ConnID
	topic domain.Topic
}

type task struct {
	cancel context.CancelFunc
}

// SubscriptionManager owns the periodic push tasks. Each (connection, topic)
// pair runs at most one timer goroutine; joining twice never starts a second
// one. Disconnect cancels everything the connection owns.
type SubscriptionManager struct {
	bus   *EventBus
	stats services.StatsService

	statsInterval    time.Duration
	channelsInterval time.Duration

	mu    sync.Mutex
	tasks map[taskKey]*task

	logger *zap.SugaredLogger
}

func NewSubscriptionManager(
	bus *EventBus,
	stats services.StatsService,
	statsInterval, channelsInterval time.Duration,
	logger *zap.SugaredLogger,
) *SubscriptionManager {
	return &SubscriptionManager{
		bus:              bus,
		stats:            stats,
		statsInterval:    statsInterval,
		channelsInterval: channelsInterval,
		tasks:            make(map[taskKey]*task),
		logger:           logger,
	}
}

// JoinTopic subscribes the connection and, for periodic topics, starts its
// push task. Idempotent.
func (m *SubscriptionManager) JoinTopic(id ConnID, topic domain.Topic) {
	m.bus.Subscribe(id, topic)

	var interval time.Duration
	switch topic {
	case domain.TopicStats:
		interval = m.statsInterval
	case domain.TopicChannelFeed:
		interval = m.channelsInterval
	default:
		return
	}

	key := taskKey{conn: id, topic: topic}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, running := m.tasks[key]; running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel}
	m.tasks[key] = t
	go m.run(ctx, key, t, interval)

	m.logger.Debugw("Started periodic task", "conn_id", id, "topic", topic, "interval", interval)
}

// LeaveTopic stops the connection's push task for the topic and drops the
// membership. Idempotent.
func (m *SubscriptionManager) LeaveTopic(id ConnID, topic domain.Topic) {
	key := taskKey{conn: id, topic: topic}

	m.mu.Lock()
	if t, running := m.tasks[key]; running {
		t.cancel()
		delete(m.tasks, key)
	}
	m.mu.Unlock()

	m.bus.Unsubscribe(id, topic)
}

// OnDisconnect cancels every task the connection owns and detaches it from
// the bus. Safe to call on any termination path, normal or not.
func (m *SubscriptionManager) OnDisconnect(id ConnID) {
	m.mu.Lock()
	for key, t := range m.tasks {
		if key.conn == id {
			t.cancel()
			delete(m.tasks, key)
		}
	}
	m.mu.Unlock()

	m.bus.Detach(id)
}

// TaskCount reports the number of live periodic tasks.
func (m *SubscriptionManager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *SubscriptionManager) run(ctx context.Context, key taskKey, t *task, interval time.Duration) {
	id, topic := key.conn, key.topic

	defer func() {
		if r := recover(); r != nil {
			m.logger.Errorw("Periodic task panicked", "conn_id", id, "topic", topic, "panic", r)
			// Drop the dead entry so a later join can start a fresh task,
			// but only if it is still ours.
			m.mu.Lock()
			if m.tasks[key] == t {
				delete(m.tasks, key)
			}
			m.mu.Unlock()
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Channel deltas are measured against this task's own baseline so two
	// subscribers never split one delta between them.
	created, updated := m.stats.ActivityCounters()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			switch topic {
			case domain.TopicStats:
				snap := m.stats.LiveSnapshot()
				m.bus.Send(id, Frame{Event: "stats:update", Data: snap, Timestamp: snap.Timestamp})
			case domain.TopicChannelFeed:
				delta := m.stats.DeltaFrom(created, updated)
				created += uint64(delta.NewChannels)
				updated += uint64(delta.UpdatedChannels)
				m.bus.Send(id, Frame{Event: "channels:update", Data: delta, Timestamp: delta.Timestamp})
			}
		}
	}
}
