package user

import (
	"context"

	"github.com/mkrupp/wtwr/internal/domain"
)

// Repository defines the interface for user credential persistence.
// Emails are stored and matched in normalized form.
type Repository interface {
	// CreateUser adds a new user and returns it.
	// Returns ErrUserAlreadyExists if the email is already registered, including
	// when a concurrent signup wins the race.
	CreateUser(ctx context.Context, email, passwordHash string, profile domain.Profile) (*domain.User, error)

	// GetUserByEmail retrieves a user by email.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUserByID retrieves a user by id.
	// Returns ErrUserNotFound if no such user exists.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)

	// UpdateProfile applies a partial profile update and returns the updated user.
	// Credentials are never touched by this path.
	// Returns ErrUserNotFound if no such user exists.
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
}
