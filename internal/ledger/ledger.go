// Package ledger implements the deduplication ledger: a short-lived record of
// which fingerprints are already reserved or confirmed. It is the single
// arbiter of "is this photo new" during ingestion; the metadata store's
// unique constraint is only the backstop.
package ledger

import "context"

// Outcome is the result of a reservation attempt.
type Outcome int

const (
	// Reserved means the caller won the fingerprint and may upload it.
	Reserved Outcome = iota
	// AlreadyKnown means an entry (reserved or confirmed) already exists.
	AlreadyKnown
)

func (o Outcome) String() string {
	switch o {
	case Reserved:
		return "reserved"
	case AlreadyKnown:
		return "already_known"
	default:
		return "unknown"
	}
}

// Gate is the dedup decision point the upload coordinator depends on.
//
// Reserve must be linearizable per fingerprint: of N concurrent callers
// racing on the same fingerprint, exactly one sees Reserved and the rest
// see AlreadyKnown.
type Gate interface {
	// Reserve atomically records a time-bounded claim on a fingerprint
	// if and only if no entry currently exists.
	Reserve(ctx context.Context, fp string) (Outcome, error)

	// Confirm finalizes an entry after the client reports a successful
	// upload. Idempotent; also valid when the reservation already expired.
	Confirm(ctx context.Context, fp string) error

	// Exists reports whether any entry (reserved or confirmed) is present.
	Exists(ctx context.Context, fp string) (bool, error)
}
