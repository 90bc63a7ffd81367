package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskify/taskify-api/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodec(t *testing.T) (*TokenCodec, *fakeClock) {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, "taskify")
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return codec.WithClock(clock.Now), clock
}

func TestNewTokenCodec_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenCodec("short", "")
	assert.Error(t, err)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, clock := newTestCodec(t)

	in := domain.Claims{
		Subject: "alice",
		Role:    domain.RoleManager,
		Extra:   map[string]any{"tenant": "acme", "exp": "ignored"},
	}
	token, exp, err := codec.Encode(in, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))
	assert.True(t, exp.After(clock.Now()))

	out, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Subject)
	assert.Equal(t, domain.RoleManager, out.Role)
	assert.Equal(t, exp, out.ExpiresAt)
	assert.True(t, out.ExpiresAt.After(clock.Now()))
	assert.Equal(t, map[string]any{"tenant": "acme"}, out.Extra)
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	codec, clock := newTestCodec(t)

	token, exp, err := codec.Encode(domain.Claims{Subject: "alice", Role: domain.RoleUser}, time.Second)
	require.NoError(t, err)

	clock.Advance(999 * time.Millisecond)
	_, err = codec.Decode(token)
	require.NoError(t, err)

	clock.t = exp
	_, err = codec.Decode(token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.Equal(t, "expired", FailureReason(err))

	clock.Advance(time.Hour)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenCodec_TamperedSignature(t *testing.T) {
	codec, _ := newTestCodec(t)

	token, _, err := codec.Encode(domain.Claims{Subject: "alice", Role: domain.RoleUser}, time.Minute)
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	for i := sigStart; i < len(token); i++ {
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := codec.Decode(string(b))
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "flipped signature byte %d still decoded", i-sigStart)
	}
}

func TestTokenCodec_TamperedPayload(t *testing.T) {
	codec, _ := newTestCodec(t)

	token, _, err := codec.Encode(domain.Claims{Subject: "alice", Role: domain.RoleUser}, time.Minute)
	require.NoError(t, err)
	other, _, err := codec.Encode(domain.Claims{Subject: "mallory", Role: domain.RoleManager}, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged := strings.Split(other, ".")[1]
	_, err = codec.Decode(parts[0] + "." + forged + "." + parts[2])
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.Equal(t, "signature", FailureReason(err))
}

func TestTokenCodec_RejectsForeignTokens(t *testing.T) {
	codec, clock := newTestCodec(t)
	exp := clock.Now().Add(time.Hour).Unix()

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice", "exp": exp, "iss": "taskify",
	}).SignedString([]byte("another-secret-another-secret-xx"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "alice", "exp": exp, "iss": "taskify",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice", "iss": "taskify",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp, "iss": "taskify",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice", "exp": exp, "iss": "someone-else",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice", "exp": exp, "iss": "taskify",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong key":    wrongKey,
		"wrong alg":    wrongAlg,
		"no exp":       noExp,
		"no sub":       noSub,
		"wrong issuer": wrongIssuer,
		"alg none":     unsigned,
		"garbage":      "not-a-token",
		"empty":        "",
	}
	for name, tok := range cases {
		_, err := codec.Decode(tok)
		assert.True(t, errors.Is(err, domain.ErrInvalidToken), "%s: expected ErrInvalidToken, got %v", name, err)
	}
}

func TestTokenCodec_EncodeValidation(t *testing.T) {
	codec, _ := newTestCodec(t)

	_, _, err := codec.Encode(domain.Claims{Subject: "alice"}, 0)
	assert.Error(t, err)
	_, _, err = codec.Encode(domain.Claims{Subject: "alice"}, 500*time.Millisecond)
	assert.Error(t, err)
	_, _, err = codec.Encode(domain.Claims{}, time.Minute)
	assert.Error(t, err)
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "", FailureReason(nil))
	assert.Equal(t, "malformed", FailureReason(jwt.ErrTokenMalformed))
	assert.Equal(t, "invalid", FailureReason(errors.New("boom")))
}
