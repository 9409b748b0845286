package repositories

import (
	"context"

	"streamdash/internal/core/ports"
	"streamdash/internal/infrastructure/repositories/memory"
	redisrepo "streamdash/internal/infrastructure/repositories/redis"
	"streamdash/pkg/config"
	"streamdash/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates registries backed by Redis when configured and
// reachable, falling back to in-memory stores otherwise.
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		var client *redis.Client
		err := retry.Retry(context.Background(), retry.Config{
			Enabled:      true,
			MaxAttempts:  cfg.Redis.ConnectAttempts,
			InitialDelay: cfg.Redis.ConnectBackoff.Std(),
			MaxDelay:     10 * cfg.Redis.ConnectBackoff.Std(),
			Multiplier:   2.0,
			Jitter:       true,
		}, func() error {
			var connErr error
			client, connErr = redisrepo.NewRedisClient(
				cfg.Redis.Address,
				cfg.Redis.Password,
				cfg.Redis.DB,
				cfg.Redis.PoolSize,
				logger,
			)
			return connErr
		})
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateChannelRepository() ports.ChannelRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisChannelRepository(f.redisClient)
	}
	return memory.NewMemoryChannelRepository()
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisUserRepository(f.redisClient)
	}
	return memory.NewMemoryUserRepository()
}

// Close closes the Redis connection if one is held.
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck pings Redis when it backs the repositories.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
