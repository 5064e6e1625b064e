// Package service contains application services for authentication, notes and
// admin views.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	pkgcrypto "github.com/notehub-app/notehub/internal/crypto"
	"github.com/notehub-app/notehub/internal/errs"
	"github.com/notehub-app/notehub/internal/model"
	"github.com/notehub-app/notehub/internal/repository"
	"github.com/notehub-app/notehub/internal/token"
)

// AuthService defines registration, login and per-request identity resolution.
type AuthService interface {
	// Register creates a new user with a hashed password and admin=false.
	Register(ctx context.Context, username, password string) (*model.User, error)
	// Login verifies credentials and issues an access token.
	Login(ctx context.Context, username, password string) (model.Tokens, *model.User, error)
	// Authenticate maps a presented token to the stored user record.
	Authenticate(ctx context.Context, tokenStr string) (*model.User, error)
	// AuthorizeAdmin re-checks the admin flag for the named user. The lookup
	// is fresh on every call; the decision is never cached across requests.
	AuthorizeAdmin(ctx context.Context, username string) error
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL}
}

// Register validates the candidate credentials, hashes the password and
// persists the user. A taken username yields errs.ErrAlreadyExists.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*model.User, error) {
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return nil, fmt.Errorf("%w: username must be 3-50 characters", errs.ErrValidation)
	}
	if n := len(password); n < 6 || n > 128 {
		return nil, fmt.Errorf("%w: password must be 6-128 characters", errs.ErrValidation)
	}

	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates the user and issues an access token. An unknown
// username and a wrong password are deliberately the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.Tokens, *model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PasswordHash) {
		return model.Tokens{}, nil, errs.ErrInvalidCredentials
	}
	access, exp, err := token.Issue(u.Username, s.signKey, s.accessTTL)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, u, nil
}

// Authenticate resolves the token's subject to a stored user. Every failure,
// including a subject whose account no longer exists, collapses to
// errs.ErrUnauthenticated.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, tokenStr string) (*model.User, error) {
	sub, err := token.Validate(tokenStr, s.signKey)
	if err != nil {
		return nil, errs.ErrUnauthenticated
	}
	u, err := s.users.GetByUsername(ctx, sub)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrUnauthenticated
		}
		return nil, err
	}
	return u, nil
}

// AuthorizeAdmin checks the stored admin flag for username.
func (s *AuthServiceImpl) AuthorizeAdmin(ctx context.Context, username string) error {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !u.IsAdmin {
		return errs.ErrForbidden
	}
	return nil
}
