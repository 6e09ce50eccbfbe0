package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sealdrop/sealdrop/internal/apperr"
	"github.com/sealdrop/sealdrop/internal/auth"
	"github.com/sealdrop/sealdrop/internal/handler/dto"
	"github.com/sealdrop/sealdrop/internal/middleware"
	"github.com/sealdrop/sealdrop/internal/service"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// TransferHandler handles upload, download and listing.
type TransferHandler struct {
	svc    *service.TransferService
	logger *slog.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(svc *service.TransferService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		svc:    svc,
		logger: logger,
	}
}

// Upload handles POST /api/upload with a multipart "file" field.
func (h *TransferHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	data, filename, err := readUpload(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	t, err := h.svc.Upload(r.Context(), service.UploadInput{
		UserID:     userID,
		Filename:   filename,
		Data:       data,
		RemoteAddr: r.RemoteAddr,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("file_uploaded",
		slog.String("transfer_id", t.ID),
		slog.String("user_id", userID),
		slog.Int64("original_size", t.OriginalSize),
		slog.Float64("compression_ratio", t.CompressionRatio),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusOK, dto.ToUploadResponse(t))
}

// readUpload extracts the "file" part from a multipart request.
func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return nil, "", apperr.Wrap(apperr.PayloadTooLarge, "File too large", err)
		}
		return nil, "", apperr.Wrap(apperr.InvalidInput, "No file provided", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", apperr.New(apperr.InvalidInput, "No file provided")
		}
		return nil, "", apperr.Wrap(apperr.InvalidInput, "No file provided", err)
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, "", apperr.New(apperr.InvalidInput, "No file selected")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "Upload failed", err)
	}
	return data, header.Filename, nil
}

// Download handles GET /api/download/{id}.
func (h *TransferHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, r, h.logger, apperr.New(apperr.InvalidInput, "Transfer ID is required"))
		return
	}

	res, err := h.svc.Download(r.Context(), userID, id, r.RemoteAddr)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDownloadResponse(res.Transfer.Filename, res.Data))
}

// Recent handles GET /api/recent-transfers.
func (h *TransferHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultRecentLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	transfers, err := h.svc.Recent(r.Context(), auth.UserIDFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransferListResponse(transfers))
}
