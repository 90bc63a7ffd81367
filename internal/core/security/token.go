package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskify/taskify-api/internal/core/domain"
)

// MinSecretLength is the shortest HMAC key NewTokenCodec accepts.
const MinSecretLength = 32

var reservedClaims = map[string]struct{}{
	"sub":  {},
	"role": {},
	"exp":  {},
	"iat":  {},
	"iss":  {},
}

// TokenCodec issues and validates HS256 JWTs. The key is copied at
// construction and only read afterwards, so one codec is shared by all
// requests.
type TokenCodec struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewTokenCodec builds a codec for the given signing secret. An empty issuer
// disables the iss claim.
func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token codec: signing secret must be at least %d bytes", MinSecretLength)
	}
	return &TokenCodec{
		key:    []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the codec that reads time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Encode signs claims with an expiry of now+ttl and returns the token with
// that expiry. ttl must be at least one second because exp has second
// precision on the wire.
func (c *TokenCodec) Encode(claims domain.Claims, ttl time.Duration) (string, time.Time, error) {
	if ttl < time.Second {
		return "", time.Time{}, fmt.Errorf("token ttl must be at least 1s, got %s", ttl)
	}
	if claims.Subject == "" {
		return "", time.Time{}, errors.New("token subject is required")
	}

	now := c.now()
	exp := now.Add(ttl).Unix()

	mc := make(jwt.MapClaims, len(claims.Extra)+5)
	for k, v := range claims.Extra {
		if _, reserved := reservedClaims[k]; !reserved {
			mc[k] = v
		}
	}
	mc["sub"] = claims.Subject
	mc["iat"] = now.Unix()
	mc["exp"] = exp
	if claims.Role != "" {
		mc["role"] = claims.Role.String()
	}
	if c.issuer != "" {
		mc["iss"] = c.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, time.Unix(exp, 0).UTC(), nil
}

// Decode verifies the signature first and only then reads the claims. Any
// failure wraps domain.ErrInvalidToken together with the underlying jwt error.
func (c *TokenCodec) Decode(token string) (*domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	mc := jwt.MapClaims{}
	if _, err := jwt.NewParser(opts...).ParseWithClaims(token, mc, c.keyFunc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", domain.ErrInvalidToken)
	}
	role, _ := mc["role"].(string)

	out := &domain.Claims{
		Subject:   sub,
		Role:      domain.Role(role),
		ExpiresAt: exp.Time.UTC(),
	}
	for k, v := range mc {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = v
	}
	return out, nil
}

func (c *TokenCodec) keyFunc(*jwt.Token) (any, error) {
	return c.key, nil
}

// FailureReason classifies a Decode error into a short label for metrics and
// logs. It never looks at the token contents.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
