package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
)

// IdentityKey is the echo context key holding the *domain.ResolvedIdentity
// set by Authenticate.
const IdentityKey = "identity"

// Authenticate resolves the bearer token on every request and stores the live
// identity in the context. Rejections surface as domain.ErrUnauthenticated;
// store faults are passed through untouched.
func Authenticate(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			identity, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// Identity returns the identity stored by Authenticate, or nil.
func Identity(c echo.Context) *domain.ResolvedIdentity {
	id, _ := c.Get(IdentityKey).(*domain.ResolvedIdentity)
	return id
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", domain.ErrUnauthenticated)
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
	}
	return token, nil
}
