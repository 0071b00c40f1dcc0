// Package database defines the metadata store contracts for ingested photos
// and selfies, plus the record types they exchange. Backends live in
// subpackages; the ingestion coordinator only sees these interfaces.
package database

import (
	"context"
	"time"
)

// PhotoStore persists event photo metadata, unique per fingerprint.
type PhotoStore interface {
	// Insert creates a pending record. Returns false (and no error) when a
	// record with the same photo id already exists — duplicate inserts are
	// a normal outcome of confirm retries, not a fault.
	Insert(ctx context.Context, rec PhotoRecord) (created bool, err error)

	// Exists reports whether a record exists for the fingerprint.
	Exists(ctx context.Context, photoID string) (bool, error)

	// ByIDs returns the records for the given photo ids, in the order the
	// ids were requested. Missing ids are silently omitted.
	ByIDs(ctx context.Context, photoIDs []string) ([]PhotoRecord, error)

	// StalePending returns up to limit pending records created before
	// cutoff that have not been re-enqueued since cutoff.
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]PhotoRecord, error)

	// MarkRequeued stamps a record after the reconciler re-enqueued it.
	MarkRequeued(ctx context.Context, photoID string) error
}

// SelfieStore persists selfie metadata, unique per fingerprint.
type SelfieStore interface {
	// Insert creates a pending record; false means the selfie id is
	// already present.
	Insert(ctx context.Context, rec SelfieRecord) (created bool, err error)

	// Get returns the record for a selfie id, or nil when not found.
	Get(ctx context.Context, selfieID string) (*SelfieRecord, error)

	// StalePending mirrors PhotoStore.StalePending for selfies.
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]SelfieRecord, error)

	// MarkRequeued stamps a record after the reconciler re-enqueued it.
	MarkRequeued(ctx context.Context, selfieID string) error
}
