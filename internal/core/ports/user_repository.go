package ports

import (
	"context"

	"github.com/taskify/taskify-api/internal/core/domain"
)

// UserRepository is the credential store: it persists user records and looks
// them up by exact username.
type UserRepository interface {
	// Create assigns the user a new numeric ID. A username or email clash
	// fails with domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdatePhoneNumber(ctx context.Context, userID int64, phoneNumber string) error
}
