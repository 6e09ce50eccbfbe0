package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sealdrop/sealdrop/internal/auth"
	"github.com/sealdrop/sealdrop/internal/codec"
	"github.com/sealdrop/sealdrop/internal/gateway"
	"github.com/sealdrop/sealdrop/internal/metrics"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/repository"
)

type testEnv struct {
	store    *repository.Memory
	gateway  *gateway.Local
	recorder *metrics.InMemoryRecorder
	auth     *AuthService
	transfer *TransferService
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, nil)
}

// newTestEnvWithStore wraps the memory store when wrap is non-nil.
func newTestEnvWithStore(t *testing.T, wrap func(repository.Store) repository.Store) *testEnv {
	t.Helper()

	mem := repository.NewMemory()
	var store repository.Store = mem
	if wrap != nil {
		store = wrap(mem)
	}

	gw, err := gateway.NewLocal(t.TempDir())
	require.NoError(t, err)

	c, err := codec.New(bytes.Repeat([]byte{9}, codec.KeySize))
	require.NoError(t, err)

	hasher, err := auth.NewPasswordHasher(auth.HashParams{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	require.NoError(t, err)

	tokens, err := auth.NewTokenManager([]byte("service-test-secret"), 24*time.Hour, nil)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := metrics.NewInMemory()

	return &testEnv{
		store:    mem,
		gateway:  gw,
		recorder: rec,
		auth:     NewAuthService(store, hasher, tokens, rec, logger),
		transfer: NewTransferService(store, gw, c, rec, logger),
		logs:     logs,
	}
}

func (e *testEnv) registerAndLogin(t *testing.T, username string) *model.Identity {
	t.Helper()
	ctx := context.Background()

	_, err := e.auth.Register(ctx, RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	res, err := e.auth.Login(ctx, username, "password123", "127.0.0.1")
	require.NoError(t, err)

	id, err := e.auth.Verify(res.Token)
	require.NoError(t, err)
	return id
}

// unavailableStore fails every call with ErrStorageUnavailable.
type unavailableStore struct {
	repository.Store
}

func (unavailableStore) err() error {
	return fmt.Errorf("%w: dial tcp: connection refused", repository.ErrStorageUnavailable)
}

func (s unavailableStore) CreateUser(context.Context, *model.User) error { return s.err() }
func (s unavailableStore) FindUserByUsername(context.Context, string) (*model.User, error) {
	return nil, s.err()
}
func (s unavailableStore) ListTransfersForUser(context.Context, string, int) ([]*model.Transfer, error) {
	return nil, s.err()
}

// failingActivityStore fails only audit writes.
type failingActivityStore struct {
	repository.Store
}

func (failingActivityStore) LogActivity(context.Context, *model.Activity) error {
	return fmt.Errorf("activities table is gone")
}

// brokenGateway fails every call.
type brokenGateway struct{}

func (brokenGateway) Put(context.Context, string, []byte) error { return io.ErrUnexpectedEOF }
func (brokenGateway) Get(context.Context, string) ([]byte, error) {
	return nil, io.ErrUnexpectedEOF
}
func (brokenGateway) Ping(context.Context) error { return io.ErrUnexpectedEOF }
func (brokenGateway) Name() string               { return "broken" }
