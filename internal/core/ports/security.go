package ports

import (
	"context"
	"time"

	"github.com/taskify/taskify-api/internal/core/domain"
)

// PasswordHasher turns plaintext into a salted one-way hash and checks
// plaintext against one. Verify never errors: any mismatch or malformed hash
// is simply false.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) bool
}

// TokenCodec signs claims into a bearer token and validates one back.
type TokenCodec interface {
	Encode(claims domain.Claims, ttl time.Duration) (string, time.Time, error)
	Decode(token string) (*domain.Claims, error)
}

// LoginThrottle counts failed logins per key.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
