// Package storage persists uploaded attachment blobs.
package storage

import "context"

// ObjectStorage writes and removes attachment blobs by opaque key. The
// returned URL is what clients use to download the object.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
