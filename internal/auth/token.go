package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sealdrop/sealdrop/internal/model"
)

// Issuer is the iss claim stamped on every session token.
const Issuer = "sealdrop"

// ErrInvalidToken is returned for any token that fails verification.
// The cause is deliberately not distinguished to callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the signed session claims.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenManager creates a manager. A nil clock uses time.Now.
func NewTokenManager(secret []byte, ttl time.Duration, clock func() time.Time) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if clock == nil {
		clock = time.Now
	}

	return &TokenManager{
		secret: secret,
		ttl:    ttl,
		now:    clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for user and returns it with its expiry.
func (m *TokenManager) Issue(user *model.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, issuer and expiry and returns the caller identity.
func (m *TokenManager) Verify(token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}

	return &model.Identity{
		UserID:    claims.UserID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
