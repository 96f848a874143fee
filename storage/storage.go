// storage/storage.go - Media object storage abstraction
package storage

import (
	"context"
	"time"
)

// MediaStore persists round media (audio clips, images) and hands out
// short-lived download URLs.
type MediaStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PresignTTL is how long generated media URLs stay valid.
const PresignTTL = time.Hour
