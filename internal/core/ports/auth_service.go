package ports

import (
	"context"
	"time"

	"github.com/taskify/taskify-api/internal/core/domain"
)

// RegisterInput carries registration data. Role is raw external input and is
// parsed by the service.
type RegisterInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	Role        string
	PhoneNumber string
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *domain.User
}

// IdentityResolver validates a bearer token and returns the live identity it
// names.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.ResolvedIdentity, error)
}

type AuthService interface {
	IdentityResolver
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, identity *domain.ResolvedIdentity, current, next string) error
}
