package s3

import (
	"context"
)

// Putter writes objects to a bucket.
type Putter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
