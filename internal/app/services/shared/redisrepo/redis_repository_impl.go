package redisrepo

import (
	"context"
	"time"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/pkg/exceptions"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) contracts.RedisRepository {
	return &redisRepository{client: client}
}

// IncrementWithExpiry bumps the counter and sets the TTL on first use so
// daily quota keys expire on their own.
func (r *redisRepository) IncrementWithExpiry(ctx context.Context, key string, ttlSeconds int) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, exceptions.ErrRedisIncrement(err)
	}
	if count == 1 && ttlSeconds > 0 {
		if err := r.client.Expire(ctx, key, time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
			return count, exceptions.ErrRedisIncrement(err)
		}
	}
	return count, nil
}
