package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/openpic/openpic/internal/database"
	"github.com/openpic/openpic/internal/fingerprint"
	"github.com/openpic/openpic/internal/ledger"
)

// SelfieReceipt is returned to the client after a successful selfie intake.
// The owner token is the client's only handle on its submission until real
// accounts exist.
type SelfieReceipt struct {
	SelfieID   string
	OwnerToken string
}

// IntakeSelfie runs the synchronous selfie path: fingerprint the bytes,
// reserve, upload to object storage, persist the record, enqueue for
// matching with high priority, confirm. Unlike the batch path, a duplicate
// is an explicit rejection, because a selfie submission expects exactly one
// direct answer.
func (c *Coordinator) IntakeSelfie(ctx context.Context, data []byte) (*SelfieReceipt, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	fp, err := fingerprint.Compute(data)
	if err != nil {
		return nil, fmt.Errorf("fingerprint selfie: %w", err)
	}

	outcome, err := c.gate.Reserve(ctx, fp)
	if err != nil {
		return nil, fmt.Errorf("ledger reserve %s: %w", fp, err)
	}
	if outcome != ledger.Reserved {
		return nil, ErrDuplicateContent
	}

	if err := c.store.Put(ctx, fp, bytes.NewReader(data), "image/jpeg"); err != nil {
		// The reservation stays and expires by TTL; there is no active
		// cancel signal in the protocol.
		return nil, fmt.Errorf("store selfie %s: %w", fp, err)
	}

	receipt := &SelfieReceipt{
		SelfieID:   fp,
		OwnerToken: uuid.NewString(),
	}

	created, err := c.selfies.Insert(ctx, database.SelfieRecord{
		SelfieID:   fp,
		OwnerToken: receipt.OwnerToken,
		StorageURL: c.store.ObjectURL(fp),
		Status:     database.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("persist selfie %s: %w", fp, err)
	}
	if !created {
		// The ledger reservation should have caught this; a record slipping
		// through means the ledger entry expired while the metadata row
		// survived. Treat as already ingested.
		return nil, ErrDuplicateContent
	}

	if err := c.producer.PushHighPriority(ctx, fp); err != nil {
		// The pending record is on disk; the reconciler re-enqueues it.
		return nil, fmt.Errorf("enqueue selfie %s: %w", fp, err)
	}

	if err := c.gate.Confirm(ctx, fp); err != nil {
		// Non-fatal: the record and queue entry exist, only the ledger
		// marker is stale. A duplicate check still hits the metadata row.
		log.Printf("selfie %s: ledger confirm failed: %v", fp, err)
	}

	return receipt, nil
}
