// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/skribb-ai/backend/internal/model"
)

// UserRepository provides CRUD access for user accounts.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email, compared case-insensitively.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByUsername loads a user by username, compared case-insensitively.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// TouchLastLogin records a successful login time.
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
