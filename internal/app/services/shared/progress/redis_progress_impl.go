package progress

import (
	"context"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "claim_progress:"

type redisProgress struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisProgress publishes claim progress over redis pub/sub, one channel
// per session id, so SSE handlers on any instance can serve the stream.
func NewRedisProgress(client *redis.Client, log *zap.Logger) contracts.ProgressPublisher {
	return &redisProgress{client: client, log: log}
}

func (p *redisProgress) Publish(ctx context.Context, sessionID string, event models.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	if err := p.client.Publish(ctx, channelPrefix+sessionID, payload).Err(); err != nil {
		return exceptions.ErrRedisPublish(err)
	}
	return nil
}

func (p *redisProgress) Subscribe(ctx context.Context, sessionID string) (<-chan models.ProgressEvent, func(), error) {
	pubsub := p.client.Subscribe(ctx, channelPrefix+sessionID)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, exceptions.ErrRedisPublish(err)
	}

	events := make(chan models.ProgressEvent, 16)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event models.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				p.log.Warn("Progress.Subscribe dropping undecodable event",
					zap.String("session_id", sessionID),
					zap.Error(err),
				)
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { pubsub.Close() }
	return events, cancel, nil
}
