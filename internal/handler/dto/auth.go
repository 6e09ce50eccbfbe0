package dto

import (
	"time"

	"github.com/sealdrop/sealdrop/internal/model"
)

// RegisterRequest represents the request body for POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse acknowledges a new account.
type RegisterResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// LoginRequest represents the request body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries an issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyResponse describes a valid token.
type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ToVerifyResponse converts a verified identity.
func ToVerifyResponse(id *model.Identity) *VerifyResponse {
	return &VerifyResponse{
		Valid:    true,
		UserID:   id.UserID,
		Username: id.Username,
	}
}
