package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealdrop/sealdrop/internal/model"
)

// runStoreContract exercises the behavior every Store backend must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create and find user", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := newUser("alice")
		require.NoError(t, s.CreateUser(ctx, u))

		got, err := s.FindUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.Email, got.Email)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
		assert.True(t, got.Active)
		assert.Nil(t, got.LastLoginAt)

		_, err = s.FindUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate username leaves first user unchanged", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first := newUser("bob")
		require.NoError(t, s.CreateUser(ctx, first))

		dup := newUser("bob")
		dup.PasswordHash = "other-hash"
		assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrUsernameExists)

		got, err := s.FindUserByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, first.PasswordHash, got.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.CreateUser(ctx, newUser("carol")))

		other := newUser("carol2")
		other.Email = "carol@example.com"
		assert.ErrorIs(t, s.CreateUser(ctx, other), ErrEmailExists)
	})

	t.Run("concurrent duplicate registration has one winner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				u := newUser("racer")
				u.Email = fmt.Sprintf("racer%d@example.com", i)
				errs[i] = s.CreateUser(ctx, u)
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrUsernameExists):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("touch last login", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := newUser("dave")
		require.NoError(t, s.CreateUser(ctx, u))

		at := time.Now().UTC().Truncate(time.Millisecond)
		require.NoError(t, s.TouchLastLogin(ctx, u.ID, at))

		got, err := s.FindUserByUsername(ctx, "dave")
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
		assert.True(t, got.LastLoginAt.Equal(at))

		assert.ErrorIs(t, s.TouchLastLogin(ctx, "missing", at), ErrUserNotFound)
	})

	t.Run("transfers are scoped to owner and newest first", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		alice := newUser("alice")
		mallory := newUser("mallory")
		require.NoError(t, s.CreateUser(ctx, alice))
		require.NoError(t, s.CreateUser(ctx, mallory))

		base := time.Now().UTC().Truncate(time.Millisecond)
		var ids []string
		for i := 0; i < 3; i++ {
			tr := newTransfer(alice.ID, base.Add(time.Duration(i)*time.Second))
			require.NoError(t, s.RecordTransfer(ctx, tr))
			ids = append(ids, tr.ID)
		}
		require.NoError(t, s.RecordTransfer(ctx, newTransfer(mallory.ID, base.Add(time.Hour))))

		list, err := s.ListTransfersForUser(ctx, alice.ID, 10)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, ids[2], list[0].ID)
		assert.Equal(t, ids[0], list[2].ID)
		for _, tr := range list {
			assert.Equal(t, alice.ID, tr.UserID)
		}

		limited, err := s.ListTransfersForUser(ctx, alice.ID, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)

		empty, err := s.ListTransfersForUser(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("get transfer checks ownership", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		alice := newUser("alice")
		bob := newUser("bob")
		require.NoError(t, s.CreateUser(ctx, alice))
		require.NoError(t, s.CreateUser(ctx, bob))

		tr := newTransfer(alice.ID, time.Now().UTC().Truncate(time.Millisecond))
		require.NoError(t, s.RecordTransfer(ctx, tr))

		got, err := s.GetTransferByID(ctx, tr.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, tr.Filename, got.Filename)
		assert.Equal(t, tr.CompressionRatio, got.CompressionRatio)
		assert.Equal(t, tr.ObjectKey, got.ObjectKey)

		_, err = s.GetTransferByID(ctx, tr.ID, bob.ID)
		assert.ErrorIs(t, err, ErrTransferNotFound)

		_, err = s.GetTransferByID(ctx, "missing", alice.ID)
		assert.ErrorIs(t, err, ErrTransferNotFound)
	})

	t.Run("log activity", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u := newUser("erin")
		require.NoError(t, s.CreateUser(ctx, u))

		require.NoError(t, s.LogActivity(ctx, &model.Activity{
			ID:        ulid.Make().String(),
			UserID:    u.ID,
			Kind:      model.ActivityUserLogin,
			Details:   map[string]any{"ip": "127.0.0.1"},
			CreatedAt: time.Now().UTC(),
		}))
		assert.NoError(t, s.Ping(ctx))
	})
}

func newUser(username string) *model.User {
	return &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		Active:       true,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func newTransfer(userID string, at time.Time) *model.Transfer {
	id := ulid.Make().String()
	return &model.Transfer{
		ID:               id,
		UserID:           userID,
		Filename:         "notes.txt",
		Direction:        model.DirectionUpload,
		OriginalSize:     10240,
		CompressedSize:   512,
		StoredSize:       541,
		CompressionRatio: 95,
		ObjectKey:        userID + "/" + id + ".enc",
		CreatedAt:        at,
	}
}
