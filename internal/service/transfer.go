package service

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sealdrop/sealdrop/internal/apperr"
	"github.com/sealdrop/sealdrop/internal/codec"
	"github.com/sealdrop/sealdrop/internal/gateway"
	"github.com/sealdrop/sealdrop/internal/metrics"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/repository"
)

// Recent transfer listing bounds.
const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
	maxFilenameBytes   = 255
)

// MsgTransferNotFound is returned for unknown ids and ids owned by someone else alike.
const MsgTransferNotFound = "Transfer not found or access denied"

// TransferService seals uploads into the gateway and opens them on download.
type TransferService struct {
	store   repository.Store
	gateway gateway.Gateway
	codec   *codec.Codec
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewTransferService creates a new TransferService.
func NewTransferService(store repository.Store, gw gateway.Gateway, c *codec.Codec, recorder metrics.Recorder, logger *slog.Logger) *TransferService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferService{
		store:   store,
		gateway: gw,
		codec:   c,
		metrics: recorder,
		logger:  logger.With(slog.String("component", "transfer"), slog.String("gateway", gw.Name())),
		now:     time.Now,
	}
}

// UploadInput defines input for an upload.
type UploadInput struct {
	UserID     string
	Filename   string
	Data       []byte
	RemoteAddr string
}

// Upload compresses and encrypts the file, stores the sealed bytes and
// records the transfer.
func (s *TransferService) Upload(ctx context.Context, in UploadInput) (*model.Transfer, error) {
	start := time.Now()
	direction := string(model.DirectionUpload)

	filename, ok := SanitizeFilename(in.Filename)
	if !ok {
		s.metrics.IncTransferFailure(direction, "invalid_filename")
		return nil, apperr.New(apperr.InvalidInput, "No file selected")
	}

	sealed, stats, err := s.codec.Encode(in.Data)
	if err != nil {
		s.metrics.IncTransferFailure(direction, "encode")
		return nil, apperr.Wrap(apperr.Internal, "Upload failed", err)
	}

	t := &model.Transfer{
		ID:               newID(),
		UserID:           in.UserID,
		Filename:         filename,
		Direction:        model.DirectionUpload,
		OriginalSize:     stats.OriginalSize,
		CompressedSize:   stats.CompressedSize,
		StoredSize:       stats.StoredSize,
		CompressionRatio: stats.CompressionRatio,
		CreatedAt:        s.now().UTC(),
	}
	t.ObjectKey = gateway.ObjectKey(t.UserID, t.ID)

	if err := s.gateway.Put(ctx, t.ObjectKey, sealed); err != nil {
		s.metrics.IncTransferFailure(direction, "gateway")
		return nil, apperr.Wrap(apperr.StorageUnavailable, "Storage unavailable", err)
	}

	if err := s.store.RecordTransfer(ctx, t); err != nil {
		s.metrics.IncTransferFailure(direction, "store")
		// The sealed object stays behind without a record; nothing can reach it.
		s.logger.Error("transfer stored but not recorded",
			slog.String("object_key", t.ObjectKey),
			slog.String("error", err.Error()),
		)
		return nil, storeError(err)
	}

	s.metrics.ObserveTransfer(direction, stats.OriginalSize, time.Since(start))
	s.metrics.ObserveCompressionRatio(stats.CompressionRatio)
	logActivity(ctx, s.store, s.logger, t.CreatedAt, &model.Activity{
		UserID: t.UserID,
		Kind:   model.ActivityFileUpload,
		Details: map[string]any{
			"transfer_id":       t.ID,
			"filename":          t.Filename,
			"original_size":     t.OriginalSize,
			"compressed_size":   t.CompressedSize,
			"compression_ratio": t.CompressionRatio,
		},
		RemoteAddr: in.RemoteAddr,
	})

	return t, nil
}

// DownloadResult is an opened transfer.
type DownloadResult struct {
	Transfer *model.Transfer
	Data     []byte
}

// Download opens a transfer owned by userID. Downloads do not create a
// transfer record.
func (s *TransferService) Download(ctx context.Context, userID, transferID, remoteAddr string) (*DownloadResult, error) {
	start := time.Now()
	direction := string(model.DirectionDownload)

	t, err := s.store.GetTransferByID(ctx, transferID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTransferNotFound) {
			s.metrics.IncTransferFailure(direction, "not_found")
			return nil, apperr.New(apperr.NotFound, MsgTransferNotFound)
		}
		return nil, storeError(err)
	}

	sealed, err := s.gateway.Get(ctx, t.ObjectKey)
	if err != nil {
		if errors.Is(err, gateway.ErrObjectNotFound) {
			s.metrics.IncTransferFailure(direction, "object_missing")
			return nil, apperr.Wrap(apperr.Internal, "Download failed", err)
		}
		s.metrics.IncTransferFailure(direction, "gateway")
		return nil, apperr.Wrap(apperr.StorageUnavailable, "Storage unavailable", err)
	}

	data, err := s.codec.Decode(sealed)
	if errors.Is(err, codec.ErrTooLarge) {
		s.metrics.IncTransferFailure(direction, "too_large")
		return nil, apperr.Wrap(apperr.PayloadTooLarge, "Stored file exceeds the download size limit", err)
	}
	if err != nil {
		s.metrics.IncTransferFailure(direction, "corrupt")
		return nil, apperr.Wrap(apperr.CorruptData, "Stored file could not be decrypted", err)
	}

	s.metrics.ObserveTransfer(direction, int64(len(data)), time.Since(start))
	logActivity(ctx, s.store, s.logger, s.now().UTC(), &model.Activity{
		UserID: userID,
		Kind:   model.ActivityFileDownload,
		Details: map[string]any{
			"transfer_id": t.ID,
			"filename":    t.Filename,
		},
		RemoteAddr: remoteAddr,
	})

	return &DownloadResult{Transfer: t, Data: data}, nil
}

// Recent lists the caller's newest transfers. limit is clamped to
// [1, MaxRecentLimit]; zero means DefaultRecentLimit.
func (s *TransferService) Recent(ctx context.Context, userID string, limit int) ([]*model.Transfer, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	transfers, err := s.store.ListTransfersForUser(ctx, userID, limit)
	if err != nil {
		return nil, storeError(err)
	}
	return transfers, nil
}

// SanitizeFilename reduces a client filename to its base name. It reports
// false when nothing usable is left.
func SanitizeFilename(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(path.Base(name))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", false
	}
	if strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return "", false
	}

	for len(name) > maxFilenameBytes {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return name, true
}
