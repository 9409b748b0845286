package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisChannelRepository keeps channels as JSON values under per-id keys with
// an explicit order list. Ids come from an INCR counter, so they stay strictly
// increasing even across restarts. Read-modify-write operations serialize
// through a process-local mutex; the repository assumes a single writer
// instance.
type RedisChannelRepository struct {
	client *redis.Client
	prefix string
	mu     sync.Mutex
}

func NewRedisChannelRepository(client *redis.Client) ports.ChannelRepository {
	return &RedisChannelRepository{
		client: client,
		prefix: "streamdash:channel:",
	}
}

func (r *RedisChannelRepository) channelKey(id domain.ChannelID) string {
	return r.prefix + strconv.FormatInt(int64(id), 10)
}

func (r *RedisChannelRepository) orderKey() string {
	return r.prefix + "order"
}

func (r *RedisChannelRepository) nextIDKey() string {
	return r.prefix + "next_id"
}

func (r *RedisChannelRepository) Insert(ctx context.Context, channel domain.Channel) (domain.Channel, error) {
	id, err := r.client.Incr(ctx, r.nextIDKey()).Result()
	if err != nil {
		return domain.Channel{}, fmt.Errorf("failed to allocate channel id: %w", err)
	}

	now := time.Now()
	channel.ID = domain.ChannelID(id)
	channel.CreatedAt = now
	channel.UpdatedAt = now

	if err := r.set(ctx, channel); err != nil {
		return domain.Channel{}, err
	}

	// Newest channels surface first.
	if err := r.client.LPush(ctx, r.orderKey(), id).Err(); err != nil {
		return domain.Channel{}, fmt.Errorf("failed to add channel to order list: %w", err)
	}

	return channel, nil
}

func (r *RedisChannelRepository) set(ctx context.Context, channel domain.Channel) error {
	data, err := json.Marshal(channel)
	if err != nil {
		return fmt.Errorf("failed to marshal channel: %w", err)
	}
	if err := r.client.Set(ctx, r.channelKey(channel.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set channel in Redis: %w", err)
	}
	return nil
}

func (r *RedisChannelRepository) Get(ctx context.Context, id domain.ChannelID) (domain.Channel, error) {
	data, err := r.client.Get(ctx, r.channelKey(id)).Result()
	if err == redis.Nil {
		return domain.Channel{}, domain.ErrChannelNotFound
	}
	if err != nil {
		return domain.Channel{}, fmt.Errorf("failed to get channel from Redis: %w", err)
	}

	var channel domain.Channel
	if err := json.Unmarshal([]byte(data), &channel); err != nil {
		return domain.Channel{}, fmt.Errorf("failed to unmarshal channel: %w", err)
	}
	return channel, nil
}

func (r *RedisChannelRepository) Update(ctx context.Context, id domain.ChannelID, patch domain.ChannelPatch) (domain.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, err := r.Get(ctx, id)
	if err != nil {
		return domain.Channel{}, err
	}

	patch.Apply(&channel)
	channel.UpdatedAt = time.Now()

	if err := r.set(ctx, channel); err != nil {
		return domain.Channel{}, err
	}
	return channel, nil
}

func (r *RedisChannelRepository) Remove(ctx context.Context, id domain.ChannelID) (domain.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, err := r.Get(ctx, id)
	if err != nil {
		return domain.Channel{}, err
	}

	if err := r.client.LRem(ctx, r.orderKey(), 0, int64(id)).Err(); err != nil {
		return domain.Channel{}, fmt.Errorf("failed to remove channel from order list: %w", err)
	}
	if err := r.client.Del(ctx, r.channelKey(id)).Err(); err != nil {
		return domain.Channel{}, fmt.Errorf("failed to delete channel from Redis: %w", err)
	}
	return channel, nil
}

func (r *RedisChannelRepository) List(ctx context.Context, filter domain.ChannelFilter, page, limit int) ([]domain.Channel, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	ids, err := r.client.LRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read channel order list: %w", err)
	}

	var matched []domain.Channel
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		channel, err := r.Get(ctx, domain.ChannelID(id))
		if err != nil {
			// Entries can lag deletions; skip them.
			continue
		}
		if channelMatches(channel, filter) {
			matched = append(matched, channel)
		}
	}

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []domain.Channel{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func channelMatches(c domain.Channel, f domain.ChannelFilter) bool {
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Search != "" {
		if !containsFold(c.Name, f.Search) && !containsFold(c.Description, f.Search) {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
