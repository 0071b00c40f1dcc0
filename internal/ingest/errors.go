package ingest

import "errors"

var (
	// ErrDuplicateContent means the fingerprint is already known to the
	// ledger or the metadata store. For batch paths this is a silent skip;
	// the synchronous selfie path surfaces it as a rejection.
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrNotFound means no selfie record exists for the requested id.
	ErrNotFound = errors.New("not found")

	// ErrEmptyImage means a submission carried no bytes.
	ErrEmptyImage = errors.New("empty image")
)
