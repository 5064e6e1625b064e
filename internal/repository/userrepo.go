// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/notehub-app/notehub/internal/model"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	// Create inserts a new user and fills in the assigned ID and timestamp.
	// Returns errs.ErrAlreadyExists when the username is taken.
	Create(ctx context.Context, u *model.User) error
	// GetByUsername loads a user by exact (case-sensitive) username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// List returns all users ordered by ID. Admin use only.
	List(ctx context.Context) ([]model.User, error)
	// SetAdmin flips the admin flag for the named user.
	SetAdmin(ctx context.Context, username string, isAdmin bool) error
}
