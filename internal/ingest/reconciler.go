package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openpic/openpic/internal/config"
	"github.com/openpic/openpic/internal/database"
	"github.com/openpic/openpic/internal/queue"
)

// Reconciler closes the gap between metadata insert and queue push: the two
// are not atomic, so a crash between them leaves a pending record the worker
// will never see. The sweep re-enqueues such records; the worker tolerates
// the occasional duplicate item since queue entries are bare fingerprints.
type Reconciler struct {
	photos     database.PhotoStore
	selfies    database.SelfieStore
	producer   queue.Producer
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
}

// NewReconciler creates a reconciler over the metadata store and queues.
func NewReconciler(
	photos database.PhotoStore,
	selfies database.SelfieStore,
	producer queue.Producer,
	cfg config.ReconcilerConfig,
) *Reconciler {
	return &Reconciler{
		photos:     photos,
		selfies:    selfies,
		producer:   producer,
		interval:   cfg.Interval,
		staleAfter: cfg.StaleAfter,
		batchSize:  cfg.BatchSize,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("reconciler running: interval %s, stale after %s", r.interval, r.staleAfter)
	for {
		select {
		case <-ctx.Done():
			log.Println("reconciler stopped")
			return
		case <-ticker.C:
			requeued, err := r.Sweep(ctx)
			if err != nil {
				log.Printf("reconciler sweep error: %v", err)
			}
			if requeued > 0 {
				log.Printf("reconciler re-enqueued %d stuck records", requeued)
			}
		}
	}
}

// Sweep re-enqueues pending records older than the stale threshold, selfies
// onto the high-priority queue and event photos onto the low-priority one.
// Returns how many records were re-enqueued.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-r.staleAfter)
	requeued := 0

	selfies, err := r.selfies.StalePending(ctx, cutoff, r.batchSize)
	if err != nil {
		return requeued, fmt.Errorf("stale selfies: %w", err)
	}
	for _, rec := range selfies {
		if err := r.producer.PushHighPriority(ctx, rec.SelfieID); err != nil {
			log.Printf("reconciler: re-enqueue selfie %s: %v", rec.SelfieID, err)
			continue
		}
		if err := r.selfies.MarkRequeued(ctx, rec.SelfieID); err != nil {
			log.Printf("reconciler: stamp selfie %s: %v", rec.SelfieID, err)
		}
		requeued++
	}

	photos, err := r.photos.StalePending(ctx, cutoff, r.batchSize)
	if err != nil {
		return requeued, fmt.Errorf("stale photos: %w", err)
	}
	for _, rec := range photos {
		if err := r.producer.PushLowPriority(ctx, rec.PhotoID); err != nil {
			log.Printf("reconciler: re-enqueue photo %s: %v", rec.PhotoID, err)
			continue
		}
		if err := r.photos.MarkRequeued(ctx, rec.PhotoID); err != nil {
			log.Printf("reconciler: stamp photo %s: %v", rec.PhotoID, err)
		}
		requeued++
	}

	return requeued, nil
}
