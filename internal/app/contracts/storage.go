package contracts

import "context"

// DocumentStorage holds uploaded claim documents between submission and
// processing. Objects are removed once the pipeline consumed them.
type DocumentStorage interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) error
	Get(ctx context.Context, objectName string) ([]byte, error)
	Remove(ctx context.Context, objectName string) error
}
