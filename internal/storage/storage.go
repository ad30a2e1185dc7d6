// Package storage issues presigned upload URLs against S3-compatible object
// storage. The service never proxies object bytes; clients PUT directly to the
// bucket with the URL they are granted.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrBucketMissing is returned by Ping when the configured bucket does not exist.
var ErrBucketMissing = errors.New("storage: bucket does not exist")

// Storage is a reusable, S3-compatible presigning client.
// Implementations are safe for concurrent use.
type Storage interface {
	// PresignPut returns a time-limited URL that accepts one PUT of key with
	// the given Content-Type. The signature binds the Content-Type header.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	// ObjectURL returns the stable, unsigned URL the object will be reachable at.
	ObjectURL(key string) string
	// Ping verifies that the bucket is reachable.
	Ping(ctx context.Context) error
}
