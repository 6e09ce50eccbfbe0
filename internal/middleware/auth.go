package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sealdrop/sealdrop/internal/apperr"
	"github.com/sealdrop/sealdrop/internal/auth"
	"github.com/sealdrop/sealdrop/internal/model"
)

// Messages for rejected bearer tokens.
const (
	MsgNoToken      = "No token provided"
	MsgInvalidToken = "Invalid or expired token"
)

// TokenVerifier checks a bearer token and returns the caller.
type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
}

// Auth returns a middleware that requires a valid session token.
// The token is read from "Authorization: Bearer <token>" and the verified
// identity is injected into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, apperr.Unauthorized, MsgNoToken)
				return
			}

			id, err := cfg.Verifier.Verify(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, apperr.Unauthorized, MsgInvalidToken)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", id.UserID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the token from the Authorization header.
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
