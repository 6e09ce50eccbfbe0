// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sealdrop/sealdrop/internal/apperr"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/repository"
)

// activityTimeout bounds the best-effort audit write once the request has
// already succeeded.
const activityTimeout = 2 * time.Second

func newID() string {
	return ulid.Make().String()
}

// storeError maps a store failure to an API error. Sentinels the caller
// handles itself must be checked before calling this.
func storeError(err error) error {
	if errors.Is(err, repository.ErrStorageUnavailable) {
		return apperr.Wrap(apperr.StorageUnavailable, "Storage unavailable", err)
	}
	return apperr.Wrap(apperr.Internal, "An internal error occurred", err)
}

// logActivity writes an audit entry. Failures are logged and never surface.
func logActivity(ctx context.Context, store repository.Store, logger *slog.Logger, now time.Time, a *model.Activity) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), activityTimeout)
	defer cancel()

	a.ID = newID()
	a.CreatedAt = now
	if err := store.LogActivity(ctx, a); err != nil {
		logger.Warn("failed to log activity",
			slog.String("kind", string(a.Kind)),
			slog.String("user_id", a.UserID),
			slog.String("error", err.Error()),
		)
	}
}
