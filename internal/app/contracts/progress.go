package contracts

import (
	"context"

	"claimlens-service/internal/app/models"
)

// ProgressPublisher fans progress events out to subscribers of one claim
// session. Subscribe returns a receive channel and a cancel function that
// releases the subscription.
type ProgressPublisher interface {
	Publish(ctx context.Context, sessionID string, event models.ProgressEvent) error
	Subscribe(ctx context.Context, sessionID string) (<-chan models.ProgressEvent, func(), error)
}
