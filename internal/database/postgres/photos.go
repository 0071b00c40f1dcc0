package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/openpic/openpic/internal/database"
)

// PhotoRepository provides PostgreSQL-backed event photo metadata storage.
type PhotoRepository struct {
	pool *Pool
}

// NewPhotoRepository creates a new PostgreSQL photo repository.
func NewPhotoRepository(pool *Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

// Insert creates a pending record. ON CONFLICT DO NOTHING makes it idempotent:
// a duplicate fingerprint reports created=false instead of an error.
func (r *PhotoRepository) Insert(ctx context.Context, rec database.PhotoRecord) (bool, error) {
	query := `
		INSERT INTO event_photos (photo_id, storage_url, status, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (photo_id) DO NOTHING
	`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.pool.Exec(ctx, query, rec.PhotoID, rec.StorageURL, rec.Status, createdAt)
	if err != nil {
		return false, fmt.Errorf("insert photo %s: %w", rec.PhotoID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert photo %s: rows affected: %w", rec.PhotoID, err)
	}
	return n == 1, nil
}

// Exists reports whether a record exists for the fingerprint.
func (r *PhotoRepository) Exists(ctx context.Context, photoID string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, "SELECT 1 FROM event_photos WHERE photo_id = $1", photoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("photo exists %s: %w", photoID, err)
	}
	return true, nil
}

// ByIDs returns records for the requested ids, preserving request order.
func (r *PhotoRepository) ByIDs(ctx context.Context, photoIDs []string) ([]database.PhotoRecord, error) {
	if len(photoIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT photo_id, storage_url, status, created_at, requeued_at
		FROM event_photos
		WHERE photo_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, pq.Array(photoIDs))
	if err != nil {
		return nil, fmt.Errorf("photos by ids: %w", err)
	}
	defer rows.Close()

	found := make(map[string]database.PhotoRecord, len(photoIDs))
	for rows.Next() {
		var rec database.PhotoRecord
		var requeued sql.NullTime
		if err := rows.Scan(&rec.PhotoID, &rec.StorageURL, &rec.Status, &rec.CreatedAt, &requeued); err != nil {
			return nil, fmt.Errorf("scan photo record: %w", err)
		}
		if requeued.Valid {
			rec.RequeuedAt = &requeued.Time
		}
		found[rec.PhotoID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photo records: %w", err)
	}

	// Preserve the caller's id order; matched photo lists are ordered.
	records := make([]database.PhotoRecord, 0, len(found))
	for _, id := range photoIDs {
		if rec, ok := found[id]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// StalePending returns pending records eligible for re-enqueue.
func (r *PhotoRepository) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]database.PhotoRecord, error) {
	query := `
		SELECT photo_id, storage_url, status, created_at, requeued_at
		FROM event_photos
		WHERE status = $1
		  AND created_at < $2
		  AND (requeued_at IS NULL OR requeued_at < $2)
		ORDER BY created_at
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, database.StatusPending, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("stale pending photos: %w", err)
	}
	defer rows.Close()

	var records []database.PhotoRecord
	for rows.Next() {
		var rec database.PhotoRecord
		var requeued sql.NullTime
		if err := rows.Scan(&rec.PhotoID, &rec.StorageURL, &rec.Status, &rec.CreatedAt, &requeued); err != nil {
			return nil, fmt.Errorf("scan stale photo: %w", err)
		}
		if requeued.Valid {
			rec.RequeuedAt = &requeued.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale photos: %w", err)
	}
	return records, nil
}

// MarkRequeued stamps a record after a reconciliation re-enqueue.
func (r *PhotoRepository) MarkRequeued(ctx context.Context, photoID string) error {
	_, err := r.pool.Exec(ctx, "UPDATE event_photos SET requeued_at = NOW() WHERE photo_id = $1", photoID)
	if err != nil {
		return fmt.Errorf("mark photo requeued %s: %w", photoID, err)
	}
	return nil
}
