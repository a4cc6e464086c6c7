package claims

import (
	"context"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/pkg/dto/requests"

	"go.uber.org/zap"
)

// Worker drains the claim queue and drives each message through the
// usecase. It runs alongside the HTTP server in the same process.
type Worker struct {
	Queue        contracts.ClaimQueue
	ClaimUsecase contracts.ClaimUsecase
	Log          *zap.Logger
}

func NewWorker(queue contracts.ClaimQueue, claimUsecase contracts.ClaimUsecase, logger *zap.Logger) *Worker {
	return &Worker{Queue: queue, ClaimUsecase: claimUsecase, Log: logger}
}

// Start blocks consuming the queue until ctx is cancelled. Handler errors
// are logged and nacked by the queue service; the worker itself keeps
// running.
func (w *Worker) Start(ctx context.Context) error {
	w.Log.Info("Worker.Start consuming claim queue")
	return w.Queue.Consume(ctx, func(ctx context.Context, message *requests.ProcessClaim) error {
		if err := w.ClaimUsecase.ProcessClaim(ctx, message); err != nil {
			w.Log.Error("Worker claim processing failed",
				zap.String("claim_id", message.ClaimID), zap.Error(err))
			return err
		}
		return nil
	})
}
