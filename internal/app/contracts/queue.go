package contracts

import (
	"context"

	"claimlens-service/internal/pkg/dto/requests"
)

// ClaimQueue decouples claim submission from processing. Consume delivers
// messages until ctx is cancelled; handlers ack by returning nil and nack
// by returning an error.
type ClaimQueue interface {
	Enqueue(ctx context.Context, message *requests.ProcessClaim) error
	Consume(ctx context.Context, handler func(ctx context.Context, message *requests.ProcessClaim) error) error
}

// RedisRepository is the subset of redis operations the service relies on
// outside of pub/sub, currently the per-IP daily request counter.
type RedisRepository interface {
	IncrementWithExpiry(ctx context.Context, key string, ttlSeconds int) (int64, error)
}
