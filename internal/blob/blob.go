// Package blob stores plan screenshots in S3-compatible object storage or
// in process memory.
package blob

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("blob: object not found")
	ErrPresignUnsupported = errors.New("blob: presigned URLs not supported")
)

// Store is the object storage used for screenshots.
type Store interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	PresignGet(ctx context.Context, key string, ttlSeconds int) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
