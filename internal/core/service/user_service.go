package service

import (
	"context"
	"errors"
	"strings"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
)

type userService struct {
	users ports.UserRepository
}

// NewUserService returns a UserService implementation.
func NewUserService(users ports.UserRepository) ports.UserService {
	return &userService{users: users}
}

func (s *userService) Profile(ctx context.Context, identity *domain.ResolvedIdentity) (*domain.User, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByUsername(ctx, identity.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	return user, err
}

// UpdatePhoneNumber is the only profile field a user may change themselves.
func (s *userService) UpdatePhoneNumber(ctx context.Context, identity *domain.ResolvedIdentity, phoneNumber string) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	return s.users.UpdatePhoneNumber(ctx, identity.ID, strings.TrimSpace(phoneNumber))
}
