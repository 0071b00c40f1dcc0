// Package storage wraps the S3-compatible object store holding photo bytes.
// Objects are keyed by fingerprint; the coordinator never streams event photo
// bytes itself, it only mints time-limited write credentials and lets clients
// upload directly.
package storage

import (
	"context"
	"io"
)

// ObjectStore is the contract the ingestion coordinator needs from object
// storage: direct writes for the synchronous selfie path and presigned URLs
// for everything else.
type ObjectStore interface {
	// PresignPut returns a time-limited URL allowing a single PUT of the
	// object at key. Write-only, scoped to that one key.
	PresignPut(ctx context.Context, key string) (string, error)

	// PresignGet returns a time-limited read URL for the object at key.
	PresignGet(ctx context.Context, key string) (string, error)

	// Put uploads bytes directly. Used by the selfie intake path, which
	// receives the image in the request body.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// ObjectURL returns the stable public URL recorded on metadata rows.
	// It grants no access by itself.
	ObjectURL(key string) string
}
