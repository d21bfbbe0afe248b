package repositories

import (
	"context"

	"agentx/internal/domain/models"
)

// UserRepository stores registered accounts.
type UserRepository interface {
	// Create inserts a user. Returns a ConflictError when the email is
	// already registered.
	Create(ctx context.Context, user *models.User) error

	// GetByEmail returns the user with the given email, ErrNotFound if none.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
