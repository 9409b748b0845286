package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisUserRepository mirrors RedisChannelRepository for users, with extra
// lookup hashes for email and username uniqueness. Users append to the tail
// of the order list.
type RedisUserRepository struct {
	client *redis.Client
	prefix string
	mu     sync.Mutex
}

func NewRedisUserRepository(client *redis.Client) ports.UserRepository {
	return &RedisUserRepository{
		client: client,
		prefix: "streamdash:user:",
	}
}

func (r *RedisUserRepository) userKey(id domain.UserID) string {
	return r.prefix + strconv.FormatInt(int64(id), 10)
}

func (r *RedisUserRepository) orderKey() string { return r.prefix + "order" }

func (r *RedisUserRepository) nextIDKey() string { return r.prefix + "next_id" }

func (r *RedisUserRepository) emailKey() string { return r.prefix + "by_email" }

func (r *RedisUserRepository) usernameKey() string { return r.prefix + "by_username" }

func (r *RedisUserRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	id, err := r.client.Incr(ctx, r.nextIDKey()).Result()
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to allocate user id: %w", err)
	}

	// Claim both lookup indexes atomically before writing any user data.
	// HSETNX makes the claim the single point of contention, so concurrent
	// inserts with the same identity cannot both commit.
	claimed, err := r.client.HSetNX(ctx, r.emailKey(), user.Email, id).Result()
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to claim email index: %w", err)
	}
	if !claimed {
		return domain.User{}, domain.ErrEmailTaken
	}
	claimed, err = r.client.HSetNX(ctx, r.usernameKey(), user.Username, id).Result()
	if err != nil || !claimed {
		r.client.HDel(ctx, r.emailKey(), user.Email)
		if err != nil {
			return domain.User{}, fmt.Errorf("failed to claim username index: %w", err)
		}
		return domain.User{}, domain.ErrUsernameTaken
	}

	now := time.Now()
	user.ID = domain.UserID(id)
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := r.set(ctx, user); err != nil {
		return domain.User{}, err
	}
	if err := r.client.RPush(ctx, r.orderKey(), id).Err(); err != nil {
		return domain.User{}, fmt.Errorf("failed to add user to order list: %w", err)
	}
	return user, nil
}

func (r *RedisUserRepository) set(ctx context.Context, user domain.User) error {
	type storedUser struct {
		domain.User
		PasswordHash string `json:"passwordHash"`
	}
	data, err := json.Marshal(storedUser{User: user, PasswordHash: user.PasswordHash})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := r.client.Set(ctx, r.userKey(user.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set user in Redis: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) Get(ctx context.Context, id domain.UserID) (domain.User, error) {
	data, err := r.client.Get(ctx, r.userKey(id)).Result()
	if err == redis.Nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user from Redis: %w", err)
	}

	var stored struct {
		domain.User
		PasswordHash string `json:"passwordHash"`
	}
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return domain.User{}, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	user := stored.User
	user.PasswordHash = stored.PasswordHash
	return user, nil
}

func (r *RedisUserRepository) getByIndex(ctx context.Context, hashKey, field string) (domain.User, error) {
	idStr, err := r.client.HGet(ctx, hashKey, field).Result()
	if err == redis.Nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to resolve user index: %w", err)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return domain.User{}, fmt.Errorf("corrupt user index entry %q: %w", idStr, err)
	}
	return r.Get(ctx, domain.UserID(id))
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getByIndex(ctx, r.emailKey(), email)
}

func (r *RedisUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getByIndex(ctx, r.usernameKey(), username)
}

func (r *RedisUserRepository) Update(ctx context.Context, id domain.UserID, patch domain.UserPatch) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	oldEmail, oldUsername := user.Email, user.Username
	patch.Apply(&user)
	user.UpdatedAt = time.Now()

	// Claim any changed identity before writing, same as Insert.
	if user.Email != oldEmail {
		claimed, err := r.client.HSetNX(ctx, r.emailKey(), user.Email, int64(id)).Result()
		if err != nil {
			return domain.User{}, fmt.Errorf("failed to claim email index: %w", err)
		}
		if !claimed {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	if user.Username != oldUsername {
		claimed, err := r.client.HSetNX(ctx, r.usernameKey(), user.Username, int64(id)).Result()
		if err != nil || !claimed {
			if user.Email != oldEmail {
				r.client.HDel(ctx, r.emailKey(), user.Email)
			}
			if err != nil {
				return domain.User{}, fmt.Errorf("failed to claim username index: %w", err)
			}
			return domain.User{}, domain.ErrUsernameTaken
		}
	}

	if err := r.set(ctx, user); err != nil {
		return domain.User{}, err
	}

	if user.Email != oldEmail {
		if err := r.client.HDel(ctx, r.emailKey(), oldEmail).Err(); err != nil {
			return domain.User{}, fmt.Errorf("failed to drop stale email index: %w", err)
		}
	}
	if user.Username != oldUsername {
		if err := r.client.HDel(ctx, r.usernameKey(), oldUsername).Err(); err != nil {
			return domain.User{}, fmt.Errorf("failed to drop stale username index: %w", err)
		}
	}
	return user, nil
}

func (r *RedisUserRepository) Remove(ctx context.Context, id domain.UserID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if err := r.client.LRem(ctx, r.orderKey(), 0, int64(id)).Err(); err != nil {
		return domain.User{}, fmt.Errorf("failed to remove user from order list: %w", err)
	}
	if err := r.client.HDel(ctx, r.emailKey(), user.Email).Err(); err != nil {
		return domain.User{}, fmt.Errorf("failed to drop email index: %w", err)
	}
	if err := r.client.HDel(ctx, r.usernameKey(), user.Username).Err(); err != nil {
		return domain.User{}, fmt.Errorf("failed to drop username index: %w", err)
	}
	if err := r.client.Del(ctx, r.userKey(id)).Err(); err != nil {
		return domain.User{}, fmt.Errorf("failed to delete user from Redis: %w", err)
	}
	return user, nil
}

func (r *RedisUserRepository) List(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	users, err := r.All(ctx)
	if err != nil {
		return nil, 0, err
	}

	var matched []domain.User
	for _, u := range users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		matched = append(matched, u)
	}

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []domain.User{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *RedisUserRepository) All(ctx context.Context) ([]domain.User, error) {
	ids, err := r.client.LRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read user order list: %w", err)
	}

	users := make([]domain.User, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		user, err := r.Get(ctx, domain.UserID(id))
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}
