package handler

import (
	"log/slog"
	"net/http"

	"github.com/sealdrop/sealdrop/internal/apperr"
	"github.com/sealdrop/sealdrop/internal/auth"
	"github.com/sealdrop/sealdrop/internal/handler/dto"
	"github.com/sealdrop/sealdrop/internal/middleware"
	"github.com/sealdrop/sealdrop/internal/service"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		RemoteAddr: r.RemoteAddr,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Message:  "User registered successfully",
		UserID:   user.ID,
		Username: user.Username,
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     res.Token,
		Username:  res.Username,
		ExpiresIn: res.ExpiresIn,
		ExpiresAt: res.ExpiresAt,
	})
}

// Logout handles POST /api/logout.
// The token stays valid until it expires; clients discard it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), auth.IdentityFromContext(r.Context()), r.RemoteAddr)
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// VerifyToken handles POST /api/verify-token.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		writeError(w, r, h.logger, apperr.New(apperr.Unauthorized, middleware.MsgNoToken))
		return
	}
	writeJSON(w, http.StatusOK, dto.ToVerifyResponse(id))
}
