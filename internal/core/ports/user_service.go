package ports

import (
	"context"

	"github.com/taskify/taskify-api/internal/core/domain"
)

// UserService covers self-service profile operations.
type UserService interface {
	Profile(ctx context.Context, identity *domain.ResolvedIdentity) (*domain.User, error)
	UpdatePhoneNumber(ctx context.Context, identity *domain.ResolvedIdentity, phoneNumber string) error
}
