// Package queue produces work items for the external matching worker. A
// work item is a bare fingerprint pushed onto one of two FIFO lists; priority
// exists only as the choice of list, and the draining policy (selfies first)
// lives entirely in the consumer.
package queue

import "context"

// Producer appends fingerprints to the work queues. This process only
// produces; consumption is owned by the matching worker.
type Producer interface {
	// PushHighPriority enqueues a selfie fingerprint for matching.
	PushHighPriority(ctx context.Context, fp string) error

	// PushLowPriority enqueues an event photo fingerprint for indexing.
	PushLowPriority(ctx context.Context, fp string) error
}
