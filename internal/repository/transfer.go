package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/sealdrop/sealdrop/internal/model"
)

const transferColumns = `id, user_id, filename, direction, original_size, compressed_size,
	stored_size, compression_ratio::float8 AS compression_ratio, object_key, created_at`

// RecordTransfer inserts an immutable transfer record.
func (r *Repository) RecordTransfer(ctx context.Context, t *model.Transfer) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO transfers (id, user_id, filename, direction, original_size, compressed_size,
			stored_size, compression_ratio, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Filename,
		string(t.Direction),
		t.OriginalSize,
		t.CompressedSize,
		t.StoredSize,
		t.CompressionRatio,
		t.ObjectKey,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record transfer: %w", classify(err))
	}

	return nil
}

// ListTransfersForUser returns the caller's transfers, newest first.
func (r *Repository) ListTransfersForUser(ctx context.Context, userID string, limit int) ([]*model.Transfer, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// LIMIT NULL means no limit in PostgreSQL.
	var lim any
	if limit > 0 {
		lim = limit
	}

	transfers := []*model.Transfer{}
	err := pgxscan.Select(ctx, r.pool, &transfers, `
		SELECT `+transferColumns+`
		FROM transfers
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, lim)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", classify(err))
	}

	return transfers, nil
}

// GetTransferByID retrieves a transfer owned by userID.
func (r *Repository) GetTransferByID(ctx context.Context, id, userID string) (*model.Transfer, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t model.Transfer
	err := pgxscan.Get(ctx, r.pool, &t,
		`SELECT `+transferColumns+` FROM transfers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", classify(err))
	}

	return &t, nil
}
