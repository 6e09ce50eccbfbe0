package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sealdrop/sealdrop/internal/model"
)

// Memory is the in-memory Store used when no database is configured or the
// database is unreachable at start-up. Data lives for the process lifetime.
type Memory struct {
	mu sync.RWMutex

	users      map[string]*model.User // by id
	byUsername map[string]string      // username -> id
	byEmail    map[string]string      // email -> id

	transfers  map[string]*model.Transfer
	activities []*model.Activity
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[string]*model.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		transfers:  make(map[string]*model.Transfer),
	}
}

// CreateUser stores a copy of user. The uniqueness check and insert happen
// under one lock, so of two concurrent duplicates exactly one wins.
func (m *Memory) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byUsername[user.Username]; ok {
		return ErrUsernameExists
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return ErrEmailExists
	}

	u := *user
	m.users[u.ID] = &u
	m.byUsername[u.Username] = u.ID
	m.byEmail[u.Email] = u.ID
	return nil
}

// FindUserByUsername returns a copy of the stored user.
func (m *Memory) FindUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *m.users[id]
	return &u, nil
}

// TouchLastLogin records a successful login time.
func (m *Memory) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	at = at.UTC()
	u.LastLoginAt = &at
	return nil
}

// RecordTransfer stores a copy of t.
func (m *Memory) RecordTransfer(_ context.Context, t *model.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *t
	m.transfers[cp.ID] = &cp
	return nil
}

// ListTransfersForUser returns copies of the caller's transfers, newest first.
func (m *Memory) ListTransfersForUser(_ context.Context, userID string, limit int) ([]*model.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*model.Transfer{}
	for _, t := range m.transfers {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetTransferByID returns a copy of the transfer if userID owns it.
func (m *Memory) GetTransferByID(_ context.Context, id, userID string) (*model.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.transfers[id]
	if !ok || !t.OwnedBy(userID) {
		return nil, ErrTransferNotFound
	}
	cp := *t
	return &cp, nil
}

// LogActivity appends an audit entry.
func (m *Memory) LogActivity(_ context.Context, a *model.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *a
	m.activities = append(m.activities, &cp)
	return nil
}

// Activities returns a snapshot of the audit trail for userID.
func (m *Memory) Activities(userID string) []model.Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Activity
	for _, a := range m.activities {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() {}
