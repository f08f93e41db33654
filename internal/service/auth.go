// Package service contains application services for authentication, notes,
// text enhancement, and OCR.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/skribb-ai/backend/internal/crypto"
	"github.com/skribb-ai/backend/internal/errs"
	"github.com/skribb-ai/backend/internal/limiter"
	"github.com/skribb-ai/backend/internal/model"
	"github.com/skribb-ai/backend/internal/repository"
	"github.com/skribb-ai/backend/internal/session"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Messages surfaced to clients on auth failures. Login failures are a single
// generic message so that a wrong password and an unknown email are
// indistinguishable.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgEmailTaken         = "Email already registered"
	MsgUsernameTaken      = "Username already taken"
)

// AuthService defines registration, login, and session operations.
type AuthService interface {
	// Signup validates input, enforces uniqueness, and creates the user.
	Signup(ctx context.Context, username, email, password string) (*model.User, error)
	// Login authenticates by email/password and issues a session token.
	Login(ctx context.Context, email, password, ip string) (*model.User, string, error)
	// Logout deletes the session for token. Idempotent.
	Logout(token string)
	// Verify resolves a token to its session.
	Verify(token string) (model.Session, bool)
	// Me loads the current user backing a session.
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	sessions session.Store
	lim      limiter.Limiter
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, sessions session.Store, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, sessions: sessions, lim: lim}
}

// validation wraps ErrValidation with a client-facing field message.
func validation(msg string) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, msg)
}

func conflict(msg string) error {
	return fmt.Errorf("%w: %s", errs.ErrAlreadyExists, msg)
}

// ValidateSignup checks the signup fields in order and reports the first failure.
func ValidateSignup(username, email, password string) error {
	if !usernameRe.MatchString(username) {
		return validation("Username must be 3-20 characters and contain only letters, numbers, and underscores")
	}
	if !emailRe.MatchString(email) {
		return validation("Please provide a valid email address")
	}
	if !passwordOK(password) {
		return validation("Password must be at least 8 characters and include an uppercase letter, a lowercase letter, and a number")
	}
	return nil
}

func passwordOK(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// Signup registers a new account. Uniqueness is checked case-insensitively,
// email before username; the database's unique indexes close the remaining race.
func (s *AuthServiceImpl) Signup(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := ValidateSignup(username, email, password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, conflict(MsgEmailTaken)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, conflict(MsgUsernameTaken)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hash, err := pkgcrypto.HashPassword([]byte(password))
	if err != nil {
		return nil, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:           uid,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, conflict(MsgEmailTaken)
		}
		return nil, err
	}
	return u, nil
}

// Login authenticates and issues an opaque session token. An unknown email
// and a wrong password produce the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (*model.User, string, error) {
	if !emailRe.MatchString(email) {
		return nil, "", validation("Please provide a valid email address")
	}

	ipHash := limiter.HashIP(ip)
	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return nil, "", err
	}
	if !allowed {
		return nil, "", errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || len(u.PasswordHash) == 0 || !pkgcrypto.VerifyPassword([]byte(password), u.PasswordHash) {
		// Record the failure for unknown emails too, so lockout behavior
		// does not reveal whether the account exists.
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return nil, "", errs.ErrRateLimited
		}
		return nil, "", fmt.Errorf("%w: %s", errs.ErrUnauthorized, MsgInvalidCredentials)
	}

	// Best-effort counter reset and last-login update.
	_ = s.lim.Success(ctx, email, ipHash)
	now := time.Now()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err == nil {
		u.LastLoginAt = &now
	}

	token, err := s.sessions.Create(*u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout removes the session. Unknown and empty tokens are not errors.
func (s *AuthServiceImpl) Logout(token string) {
	s.sessions.Delete(token)
}

// Verify resolves a token, touching the session on a hit.
func (s *AuthServiceImpl) Verify(token string) (model.Session, bool) {
	return s.sessions.Get(token)
}

// Me returns the current user row for a resolved session.
func (s *AuthServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}
