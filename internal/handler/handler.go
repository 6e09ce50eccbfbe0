// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sealdrop/sealdrop/internal/apperr"
	"github.com/sealdrop/sealdrop/internal/handler/dto"
	"github.com/sealdrop/sealdrop/internal/middleware"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Handler serves the root and fallback routes.
type Handler struct {
	logger *slog.Logger
}

// New creates a new Handler instance.
func New(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Hello describes the service.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "sealdrop secure file transfer API",
		"version": Version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "resource not found"})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "method not allowed"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError renders err as {"error": message}. Server-side failures are
// logged with their cause; the client only sees the safe message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}

	writeJSON(w, status, dto.ErrorResponse{Error: apperr.MessageOf(err)})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if isTooLarge(err) {
			return apperr.Wrap(apperr.PayloadTooLarge, "Request body too large", err)
		}
		return apperr.Wrap(apperr.InvalidInput, "Invalid request body", err)
	}
	return nil
}

// isTooLarge reports whether err came from an http.MaxBytesReader.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
