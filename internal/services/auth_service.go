package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/oopsmv/backend/internal/config"
	"github.com/oopsmv/backend/internal/models"
	"github.com/oopsmv/backend/internal/session"
	"github.com/oopsmv/backend/internal/store"
	"github.com/oopsmv/backend/pkg/crypto"
	"github.com/oopsmv/backend/pkg/validation"
)

var (
	// ErrInvalidInput flags empty or malformed request fields. Local,
	// never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is a wrong password for an existing user.
	// The HTTP layer reports it and store.ErrUserNotFound identically.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService struct {
	users    store.CredentialStore
	sessions *session.Manager
	cfg      *config.Config
}

func NewAuthService(users store.CredentialStore, sessions *session.Manager, cfg *config.Config) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
	}
}

// Register creates a new account and logs it in. Returns the session token
// for the caller to set as a cookie.
func (s *AuthService) Register(ctx context.Context, username, password, nickname string) (string, *models.User, error) {
	username = validation.SanitizeString(username)
	nickname = validation.SanitizeString(nickname)

	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if !validation.ValidateUsername(username) {
		return "", nil, fmt.Errorf("%w: invalid username format", ErrInvalidInput)
	}

	hash, err := crypto.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.Insert(ctx, username, hash, nickname)
	if err != nil {
		return "", nil, err
	}

	token, err := s.sessions.Create(ctx)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.AttachIdentity(ctx, token, username, nickname); err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Login authenticates a user and returns a fresh session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	ok, err := crypto.CheckPassword(password, user.PasswordHash)
	if err != nil {
		// Malformed stored hash. A server-side problem, not a mismatch.
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.AttachIdentity(ctx, token, username, user.Nickname); err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout destroys the session behind the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// CurrentUser resolves a token to its session without side effects. An
// unknown token or an anonymous session both return nil.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.Authenticated() {
		return nil, nil
	}
	return sess, nil
}
