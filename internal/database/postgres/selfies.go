package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/openpic/openpic/internal/database"
)

// SelfieRepository provides PostgreSQL-backed selfie metadata storage.
type SelfieRepository struct {
	pool *Pool
}

// NewSelfieRepository creates a new PostgreSQL selfie repository.
func NewSelfieRepository(pool *Pool) *SelfieRepository {
	return &SelfieRepository{pool: pool}
}

// Insert creates a pending record; created=false means the selfie id already
// exists.
func (r *SelfieRepository) Insert(ctx context.Context, rec database.SelfieRecord) (bool, error) {
	query := `
		INSERT INTO selfies (selfie_id, owner_token, storage_url, status, matched_photo_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (selfie_id) DO NOTHING
	`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	matched := rec.MatchedPhotoIDs
	if matched == nil {
		matched = []string{}
	}

	result, err := r.pool.Exec(ctx, query,
		rec.SelfieID, rec.OwnerToken, rec.StorageURL, rec.Status, pq.Array(matched), createdAt)
	if err != nil {
		return false, fmt.Errorf("insert selfie %s: %w", rec.SelfieID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert selfie %s: rows affected: %w", rec.SelfieID, err)
	}
	return n == 1, nil
}

// Get returns the record for a selfie id, or nil when not found.
func (r *SelfieRepository) Get(ctx context.Context, selfieID string) (*database.SelfieRecord, error) {
	query := `
		SELECT selfie_id, owner_token, storage_url, status, matched_photo_ids, created_at, requeued_at
		FROM selfies
		WHERE selfie_id = $1
	`

	var rec database.SelfieRecord
	var requeued sql.NullTime
	err := r.pool.QueryRow(ctx, query, selfieID).Scan(
		&rec.SelfieID,
		&rec.OwnerToken,
		&rec.StorageURL,
		&rec.Status,
		pq.Array(&rec.MatchedPhotoIDs),
		&rec.CreatedAt,
		&requeued,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get selfie %s: %w", selfieID, err)
	}
	if requeued.Valid {
		rec.RequeuedAt = &requeued.Time
	}
	return &rec, nil
}

// StalePending returns pending records eligible for re-enqueue.
func (r *SelfieRepository) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]database.SelfieRecord, error) {
	query := `
		SELECT selfie_id, owner_token, storage_url, status, matched_photo_ids, created_at, requeued_at
		FROM selfies
		WHERE status = $1
		  AND created_at < $2
		  AND (requeued_at IS NULL OR requeued_at < $2)
		ORDER BY created_at
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, database.StatusPending, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("stale pending selfies: %w", err)
	}
	defer rows.Close()

	var records []database.SelfieRecord
	for rows.Next() {
		var rec database.SelfieRecord
		var requeued sql.NullTime
		err := rows.Scan(
			&rec.SelfieID,
			&rec.OwnerToken,
			&rec.StorageURL,
			&rec.Status,
			pq.Array(&rec.MatchedPhotoIDs),
			&rec.CreatedAt,
			&requeued,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stale selfie: %w", err)
		}
		if requeued.Valid {
			rec.RequeuedAt = &requeued.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale selfies: %w", err)
	}
	return records, nil
}

// MarkRequeued stamps a record after a reconciliation re-enqueue.
func (r *SelfieRepository) MarkRequeued(ctx context.Context, selfieID string) error {
	_, err := r.pool.Exec(ctx, "UPDATE selfies SET requeued_at = NOW() WHERE selfie_id = $1", selfieID)
	if err != nil {
		return fmt.Errorf("mark selfie requeued %s: %w", selfieID, err)
	}
	return nil
}
