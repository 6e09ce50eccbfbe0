package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sealdrop/sealdrop/internal/apperr"
	"github.com/sealdrop/sealdrop/internal/auth"
	"github.com/sealdrop/sealdrop/internal/metrics"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/repository"
)

const minPasswordLength = 8

// Username: 3-64 chars of letters, digits, underscore, dot or hyphen.
var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,64}$`)

// Messages shared with handlers and tests.
const (
	MsgCredentialsRequired = "Username and password are required"
	MsgInvalidCredentials  = "Invalid username or password"
	MsgAccountDeactivated  = "Account is deactivated"
	MsgInvalidToken        = "Invalid or expired token"
)

// AuthService handles registration, login and token checks.
type AuthService struct {
	store   repository.Store
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenManager
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, hasher *auth.PasswordHasher, tokens *auth.TokenManager, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger.With(slog.String("component", "auth")),
		now:     time.Now,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	RemoteAddr string
}

// Register creates a user account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email, err := validateRegistration(username, in.Email, in.Password)
	if err != nil {
		s.metrics.IncAuthEvent(metrics.EventRegister, metrics.OutcomeInvalid)
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Registration failed", err)
	}

	user := &model.User{
		ID:           newID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			s.metrics.IncAuthEvent(metrics.EventRegister, metrics.OutcomeConflict)
			return nil, apperr.New(apperr.Conflict, "Username already exists")
		case errors.Is(err, repository.ErrEmailExists):
			s.metrics.IncAuthEvent(metrics.EventRegister, metrics.OutcomeConflict)
			return nil, apperr.New(apperr.Conflict, "Email already exists")
		default:
			s.metrics.IncAuthEvent(metrics.EventRegister, metrics.OutcomeFailure)
			return nil, storeError(err)
		}
	}

	s.metrics.IncAuthEvent(metrics.EventRegister, metrics.OutcomeSuccess)
	logActivity(ctx, s.store, s.logger, user.CreatedAt, &model.Activity{
		UserID:     user.ID,
		Kind:       model.ActivityUserRegistered,
		Details:    map[string]any{"username": user.Username},
		RemoteAddr: in.RemoteAddr,
	})

	return user, nil
}

// validateRegistration checks the fields and returns the normalized email.
func validateRegistration(username, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return "", apperr.New(apperr.InvalidInput, "Username, email and password are required")
	}
	if !usernameRegex.MatchString(username) {
		return "", apperr.New(apperr.InvalidInput,
			"Username must be 3-64 characters of letters, digits, underscore, dot or hyphen")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", apperr.New(apperr.InvalidInput, "Password must be at least 8 characters long")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.New(apperr.InvalidInput, "Invalid email address")
	}
	return strings.ToLower(addr.Address), nil
}

// LoginResult is an issued session.
type LoginResult struct {
	Token     string
	Username  string
	ExpiresAt time.Time
	ExpiresIn int64 // seconds
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password, remoteAddr string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.IncAuthEvent(metrics.EventLogin, metrics.OutcomeInvalid)
		return nil, apperr.New(apperr.InvalidInput, MsgCredentialsRequired)
	}

	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDecoy(password)
			s.metrics.IncAuthEvent(metrics.EventLogin, metrics.OutcomeFailure)
			return nil, apperr.New(apperr.Unauthorized, MsgInvalidCredentials)
		}
		return nil, storeError(err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
	if !ok {
		s.metrics.IncAuthEvent(metrics.EventLogin, metrics.OutcomeFailure)
		return nil, apperr.New(apperr.Unauthorized, MsgInvalidCredentials)
	}
	if !user.Active {
		s.metrics.IncAuthEvent(metrics.EventLogin, metrics.OutcomeFailure)
		return nil, apperr.New(apperr.Unauthorized, MsgAccountDeactivated)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Login failed", err)
	}

	now := s.now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.metrics.IncAuthEvent(metrics.EventLogin, metrics.OutcomeSuccess)
	logActivity(ctx, s.store, s.logger, now, &model.Activity{
		UserID:     user.ID,
		Kind:       model.ActivityUserLogin,
		Details:    map[string]any{"username": user.Username},
		RemoteAddr: remoteAddr,
	})

	return &LoginResult{
		Token:     token,
		Username:  user.Username,
		ExpiresAt: expiresAt,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Verify checks a bearer token. It touches no shared state.
func (s *AuthService) Verify(token string) (*model.Identity, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		s.metrics.IncAuthEvent(metrics.EventVerify, metrics.OutcomeFailure)
		return nil, apperr.Wrap(apperr.Unauthorized, MsgInvalidToken, err)
	}
	return id, nil
}

// Logout records the logout. The token itself stays valid until it expires;
// there is no server-side revocation list.
func (s *AuthService) Logout(ctx context.Context, id *model.Identity, remoteAddr string) {
	if id == nil {
		return
	}
	s.metrics.IncAuthEvent(metrics.EventLogout, metrics.OutcomeSuccess)
	logActivity(ctx, s.store, s.logger, s.now().UTC(), &model.Activity{
		UserID:     id.UserID,
		Kind:       model.ActivityUserLogout,
		Details:    map[string]any{"username": id.Username},
		RemoteAddr: remoteAddr,
	})
}
