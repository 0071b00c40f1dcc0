// Package ingest implements the ingestion coordinator: the upload
// reservation protocol, confirmation and queue hand-off, selfie intake, and
// the match status read path. All coordination state lives in the ledger and
// the metadata store, so any number of coordinator processes can run
// side by side.
package ingest

import (
	"context"
	"fmt"

	"github.com/openpic/openpic/internal/database"
	"github.com/openpic/openpic/internal/fingerprint"
	"github.com/openpic/openpic/internal/ledger"
	"github.com/openpic/openpic/internal/queue"
	"github.com/openpic/openpic/internal/storage"
)

// Coordinator ties the ledger, metadata store, object store and work queues
// together. It is stateless; every method is safe for unbounded concurrent
// use from independent processes.
type Coordinator struct {
	gate     ledger.Gate
	photos   database.PhotoStore
	selfies  database.SelfieStore
	store    storage.ObjectStore
	producer queue.Producer
}

// NewCoordinator creates a coordinator over the given backends.
func NewCoordinator(
	gate ledger.Gate,
	photos database.PhotoStore,
	selfies database.SelfieStore,
	store storage.ObjectStore,
	producer queue.Producer,
) *Coordinator {
	return &Coordinator{
		gate:     gate,
		photos:   photos,
		selfies:  selfies,
		store:    store,
		producer: producer,
	}
}

// UploadGrants is the result of a batch upload request. URLs holds one
// presigned PUT URL per newly reserved fingerprint; a fingerprint absent
// from both maps is a duplicate the client must not upload. Failed carries
// per-item backend errors.
type UploadGrants struct {
	URLs   map[string]string
	Failed map[string]string
}

// RequestUploads filters a batch of fingerprints down to the genuinely new
// ones, reserves each in the ledger, and mints a write credential per
// reserved fingerprint. Fingerprints are processed independently; one item's
// failure never aborts the rest.
func (c *Coordinator) RequestUploads(ctx context.Context, fps []string) UploadGrants {
	grants := UploadGrants{
		URLs:   make(map[string]string),
		Failed: make(map[string]string),
	}

	for _, fp := range fps {
		if !fingerprint.Valid(fp) {
			grants.Failed[fp] = "invalid fingerprint"
			continue
		}
		if _, dup := grants.URLs[fp]; dup {
			// Same file twice in one batch; first occurrence holds the
			// reservation.
			continue
		}

		// Durable backstop: content ingested long ago has no ledger entry
		// anymore but still must not be re-uploaded.
		known, err := c.photos.Exists(ctx, fp)
		if err != nil {
			grants.Failed[fp] = fmt.Sprintf("metadata lookup: %v", err)
			continue
		}
		if known {
			continue // duplicate, no credential
		}

		// The reserve call is the authoritative "is this new" decision;
		// racing callers resolve here, exactly one of them winning.
		outcome, err := c.gate.Reserve(ctx, fp)
		if err != nil {
			grants.Failed[fp] = fmt.Sprintf("ledger reserve: %v", err)
			continue
		}
		if outcome != ledger.Reserved {
			continue // duplicate or lost race, same thing to the caller
		}

		url, err := c.store.PresignPut(ctx, fp)
		if err != nil {
			// The reservation stays; its TTL is the compensation path.
			grants.Failed[fp] = fmt.Sprintf("presign: %v", err)
			continue
		}
		grants.URLs[fp] = url
	}

	return grants
}

// ConfirmResult reports the outcome of a batch confirmation, per item.
type ConfirmResult struct {
	Confirmed  int
	Duplicates int
	Failed     map[string]string
}

// ConfirmUploads finalizes fingerprints the client asserts were uploaded:
// confirm the ledger entry, persist a pending photo record, and enqueue for
// the matching worker. Steps are not atomic across each other; a record left
// pending without a queue entry is picked up by the reconciler.
func (c *Coordinator) ConfirmUploads(ctx context.Context, fps []string) ConfirmResult {
	result := ConfirmResult{Failed: make(map[string]string)}

	for _, fp := range fps {
		if !fingerprint.Valid(fp) {
			result.Failed[fp] = "invalid fingerprint"
			continue
		}

		if err := c.gate.Confirm(ctx, fp); err != nil {
			result.Failed[fp] = fmt.Sprintf("ledger confirm: %v", err)
			continue
		}

		created, err := c.photos.Insert(ctx, database.PhotoRecord{
			PhotoID:    fp,
			StorageURL: c.store.ObjectURL(fp),
			Status:     database.StatusPending,
		})
		if err != nil {
			result.Failed[fp] = fmt.Sprintf("metadata insert: %v", err)
			continue
		}
		if !created {
			// Already ingested, most likely a confirm retry. The earlier
			// confirm enqueued it; not an error.
			result.Duplicates++
			continue
		}

		if err := c.producer.PushLowPriority(ctx, fp); err != nil {
			// Record exists but never reached the queue; the reconciler
			// sweep re-enqueues it.
			result.Failed[fp] = fmt.Sprintf("enqueue: %v", err)
			continue
		}

		result.Confirmed++
	}

	return result
}
