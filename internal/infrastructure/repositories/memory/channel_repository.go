package memory

import (
	"context"
	"strings"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
)

type MemoryChannelRepository struct {
	store *store[domain.Channel]
}

// NewMemoryChannelRepository returns an in-memory channel store. New channels
// surface at the head of listing order so dashboards see most-recent first.
func NewMemoryChannelRepository() ports.ChannelRepository {
	return &MemoryChannelRepository{
		store: newStore(
			true,
			func(c *domain.Channel, id int64) { c.ID = domain.ChannelID(id) },
			func(c domain.Channel) domain.Channel { return c },
		),
	}
}

func (r *MemoryChannelRepository) Insert(ctx context.Context, channel domain.Channel) (domain.Channel, error) {
	now := time.Now()
	channel.CreatedAt = now
	channel.UpdatedAt = now
	return r.store.insert(channel), nil
}

func (r *MemoryChannelRepository) Get(ctx context.Context, id domain.ChannelID) (domain.Channel, error) {
	channel, ok := r.store.get(int64(id))
	if !ok {
		return domain.Channel{}, domain.ErrChannelNotFound
	}
	return channel, nil
}

func (r *MemoryChannelRepository) Update(ctx context.Context, id domain.ChannelID, patch domain.ChannelPatch) (domain.Channel, error) {
	channel, ok := r.store.update(int64(id), func(c *domain.Channel) {
		patch.Apply(c)
		c.UpdatedAt = time.Now()
	})
	if !ok {
		return domain.Channel{}, domain.ErrChannelNotFound
	}
	return channel, nil
}

func (r *MemoryChannelRepository) Remove(ctx context.Context, id domain.ChannelID) (domain.Channel, error) {
	channel, ok := r.store.remove(int64(id))
	if !ok {
		return domain.Channel{}, domain.ErrChannelNotFound
	}
	return channel, nil
}

func (r *MemoryChannelRepository) List(ctx context.Context, filter domain.ChannelFilter, page, limit int) ([]domain.Channel, int, error) {
	items, total := r.store.list(func(c domain.Channel) bool {
		return matchChannel(c, filter)
	}, page, limit)
	return items, total, nil
}

func matchChannel(c domain.Channel, f domain.ChannelFilter) bool {
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			return false
		}
	}
	return true
}
