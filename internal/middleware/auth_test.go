package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sealdrop/sealdrop/internal/auth"
	"github.com/sealdrop/sealdrop/internal/model"
)

type stubVerifier struct {
	valid string
	id    *model.Identity
	calls int
}

func (s *stubVerifier) Verify(token string) (*model.Identity, error) {
	s.calls++
	if token != s.valid {
		return nil, errors.New("signature is invalid")
	}
	return s.id, nil
}

func TestAuth(t *testing.T) {
	const goodToken = "header.payload.signature"

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, MsgNoToken},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, MsgNoToken},
		{"bearer without token", "Bearer ", http.StatusUnauthorized, MsgNoToken},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, MsgInvalidToken},
		{"valid token", "Bearer " + goodToken, http.StatusOK, "alice"},
		{"lowercase scheme", "bearer " + goodToken, http.StatusOK, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			verifier := &stubVerifier{valid: goodToken, id: &model.Identity{UserID: "u1", Username: "alice"}}

			handler := Auth(AuthConfig{
				Logger:   slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
				Verifier: verifier,
			})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id := auth.IdentityFromContext(r.Context())
				if id == nil {
					t.Fatal("identity missing from context")
				}
				_, _ = w.Write([]byte(id.Username))
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/verify-token", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
			if strings.Contains(logs.String(), goodToken) {
				t.Error("token leaked into logs")
			}
		})
	}
}

func TestAuth_ErrorIsJSON(t *testing.T) {
	handler := Auth(AuthConfig{
		Logger:   slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Verifier: &stubVerifier{},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recent-transfers", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"No token provided"}` {
		t.Errorf("body = %s", got)
	}
}
