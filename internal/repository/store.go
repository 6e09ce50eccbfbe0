package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sealdrop/sealdrop/internal/model"
)

// Store errors shared by every backend.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrTransferNotFound   = errors.New("transfer not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store is the credential store contract. Repository and Memory satisfy it
// identically; callers never know which one they hold.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	RecordTransfer(ctx context.Context, transfer *model.Transfer) error
	// ListTransfersForUser returns the newest transfers first. A non-positive
	// limit returns all of them.
	ListTransfersForUser(ctx context.Context, userID string, limit int) ([]*model.Transfer, error)
	// GetTransferByID returns ErrTransferNotFound when the transfer is
	// missing or owned by someone other than userID.
	GetTransferByID(ctx context.Context, id, userID string) (*model.Transfer, error)

	LogActivity(ctx context.Context, activity *model.Activity) error

	Ping(ctx context.Context) error
	Close()
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*Memory)(nil)
)
