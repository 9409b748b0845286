package services

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"streamdash/internal/core/domain"
)

// StatsService produces the periodic live snapshots pushed over websocket
// subscriptions. Viewer and stream counts are synthesized; channel activity
// counters are real and fed by the channel service.
type StatsService interface {
	LiveSnapshot() domain.LiveStats
	ActivityCounters() (created, updated uint64)
	DeltaFrom(created, updated uint64) domain.ChannelDelta

	RecordChannelCreated()
	RecordChannelUpdated()
}

type statsService struct {
	channelsCreated atomic.Uint64
	channelsUpdated atomic.Uint64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewStatsService() StatsService {
	return &statsService{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LiveSnapshot returns a fresh stats sample. Ranges mirror what the
// dashboard widgets expect: 50-149 users, 5-24 streams, bandwidth in GB
// with two decimals.
func (s *statsService) LiveSnapshot() domain.LiveStats {
	s.mu.Lock()
	users := 50 + s.rng.Intn(100)
	streams := 5 + s.rng.Intn(20)
	bandwidth := s.rng.Float64() * 10
	s.mu.Unlock()

	return domain.LiveStats{
		ActiveUsers:   users,
		ActiveStreams: streams,
		Bandwidth:     fmt.Sprintf("%.2f GB", bandwidth),
		Timestamp:     time.Now().UTC(),
	}
}

func (s *statsService) ActivityCounters() (created, updated uint64) {
	return s.channelsCreated.Load(), s.channelsUpdated.Load()
}

// DeltaFrom reports channel activity since a previously observed counter
// pair. Each periodic task keeps its own baseline so concurrent
// subscribers do not steal each other's deltas.
func (s *statsService) DeltaFrom(created, updated uint64) domain.ChannelDelta {
	return domain.ChannelDelta{
		NewChannels:     int(s.channelsCreated.Load() - created),
		UpdatedChannels: int(s.channelsUpdated.Load() - updated),
		Timestamp:       time.Now().UTC(),
	}
}

func (s *statsService) RecordChannelCreated() {
	s.channelsCreated.Add(1)
}

func (s *statsService) RecordChannelUpdated() {
	s.channelsUpdated.Add(1)
}
