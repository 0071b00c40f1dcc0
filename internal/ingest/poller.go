package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/openpic/openpic/internal/database"
)

// Match is one matched event photo with a freshly minted, time-limited
// access URL.
type Match struct {
	PhotoID string
	URL     string
}

// MatchResult is the current state of a selfie's matching run.
type MatchResult struct {
	Status  string  // pending, failed, or completed
	Matches []Match // populated only when completed
}

// MatchStatus reads the current status of a previously submitted selfie.
// Access URLs are minted on every call, never cached, so a completed poll
// performs one presign per matched photo; pending and failed polls touch
// object storage zero times.
func (c *Coordinator) MatchStatus(ctx context.Context, selfieID string) (*MatchResult, error) {
	rec, err := c.selfies.Get(ctx, selfieID)
	if err != nil {
		return nil, fmt.Errorf("load selfie %s: %w", selfieID, err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	if rec.Status != database.StatusCompleted {
		return &MatchResult{Status: rec.Status}, nil
	}

	result := &MatchResult{
		Status:  database.StatusCompleted,
		Matches: []Match{},
	}
	if len(rec.MatchedPhotoIDs) == 0 {
		return result, nil
	}

	// Matched ids may reference photos that have since disappeared; those
	// are dropped per item, never failing the whole response.
	photos, err := c.photos.ByIDs(ctx, rec.MatchedPhotoIDs)
	if err != nil {
		return nil, fmt.Errorf("load matched photos for %s: %w", selfieID, err)
	}

	for _, photo := range photos {
		url, err := c.store.PresignGet(ctx, photo.PhotoID)
		if err != nil {
			log.Printf("selfie %s: presign match %s failed, omitting: %v", selfieID, photo.PhotoID, err)
			continue
		}
		result.Matches = append(result.Matches, Match{PhotoID: photo.PhotoID, URL: url})
	}

	return result, nil
}
