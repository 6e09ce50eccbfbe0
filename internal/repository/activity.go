package repository

import (
	"context"
	"fmt"

	"github.com/sealdrop/sealdrop/internal/model"
)

// LogActivity appends an audit entry.
func (r *Repository) LogActivity(ctx context.Context, a *model.Activity) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	details := a.Details
	if details == nil {
		details = map[string]any{}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO activities (id, user_id, kind, details, remote_addr, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.UserID, string(a.Kind), details, a.RemoteAddr, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", classify(err))
	}

	return nil
}
