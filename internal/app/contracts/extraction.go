package contracts

import (
	"context"

	"claimlens-service/internal/app/models"
)

// Extractor is the document-understanding capability every pipeline stage
// consumes. Implementations must return raw model text; decoding and repair
// happen at the call site. Output is expected to be deterministic for
// identical inputs.
type Extractor interface {
	Extract(ctx context.Context, files []models.DocumentFile, task string) (string, error)
}
