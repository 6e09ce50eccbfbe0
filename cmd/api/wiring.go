package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sealdrop/sealdrop/internal/codec"
	"github.com/sealdrop/sealdrop/internal/config"
	"github.com/sealdrop/sealdrop/internal/gateway"
	"github.com/sealdrop/sealdrop/internal/repository"
)

// storeConnector opens the PostgreSQL store. Swapped in tests.
var storeConnector = func(ctx context.Context, url string) (repository.Store, error) {
	repo, err := repository.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, url); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

// openStore picks the credential store. Without DATABASE_URL, or when the
// database is unreachable and STORE_FALLBACK is on, the in-memory store is
// used and a single warning is logged.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; using in-memory store, data is lost on restart")
		return repository.NewMemory(), nil
	}

	connect := storeConnector
	if !cfg.MigrateOnStart {
		connect = func(ctx context.Context, url string) (repository.Store, error) {
			repo, err := repository.New(ctx, url)
			if err != nil {
				return nil, err
			}
			return repo, nil
		}
	}

	store, err := connect(ctx, cfg.DatabaseURL)
	if err == nil {
		logger.Info("connected to database", slog.String("database_url", redactURL(cfg.DatabaseURL)))
		return store, nil
	}
	if !cfg.StoreFallback {
		return nil, err
	}

	logger.Warn("database unavailable; falling back to in-memory store, data is lost on restart",
		slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		slog.String("database_url", redactURL(cfg.DatabaseURL)),
	)
	return repository.NewMemory(), nil
}

// openGateway picks MinIO when an endpoint is configured, else a local directory.
func openGateway(ctx context.Context, cfg *config.Config) (gateway.Gateway, error) {
	if cfg.MinIOEndpoint != "" {
		return gateway.NewMinIO(ctx, gateway.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	}
	return gateway.NewLocal(cfg.LocalStorageDir)
}

// resolveJWTSecret returns JWT_SECRET, or a random per-process secret in
// development. Config validation already rejects an empty secret elsewhere.
func resolveJWTSecret(cfg *config.Config, logger *slog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	if !cfg.IsDevelopment() {
		return nil, errors.New("JWT_SECRET is required outside development")
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate JWT secret: %w", err)
	}
	logger.Warn("JWT_SECRET not set; using a random secret, sessions end on restart")
	return secret, nil
}

// newCodec builds the transform codec. The decode ceiling comes from
// MAX_DECODE_BYTES, not the upload limit.
func newCodec(cfg *config.Config, key []byte) (*codec.Codec, error) {
	return codec.New(key,
		codec.WithLevel(cfg.CompressionLevel),
		codec.WithMaxOutput(cfg.MaxDecodeBytes),
	)
}
