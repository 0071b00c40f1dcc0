package database

import "time"

// Photo ingestion statuses. Only "pending" is written by this coordinator;
// the matching worker advances records from there.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// PhotoRecord is the durable metadata row for an ingested event photo.
// PhotoID is the content fingerprint and the primary key.
type PhotoRecord struct {
	PhotoID    string
	StorageURL string
	Status     string
	CreatedAt  time.Time
	RequeuedAt *time.Time // last reconciliation re-enqueue, nil if never
}

// SelfieRecord is the durable metadata row for a submitted selfie probe.
// MatchedPhotoIDs is populated exclusively by the matching worker; each
// entry is itself a photo fingerprint, so duplicates cannot occur.
type SelfieRecord struct {
	SelfieID        string
	OwnerToken      string
	StorageURL      string
	Status          string
	MatchedPhotoIDs []string
	CreatedAt       time.Time
	RequeuedAt      *time.Time
}
