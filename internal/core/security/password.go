package security

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

// DecoyHash is a well-formed bcrypt hash at the default cost that no password
// matches. Comparing against it costs as much as comparing against a real hash.
const DecoyHash = "$2a$10$dGFza2lmeS1kZWNveS1zYWx0cnVuc2FsdGVkLmRlY295aGFzaAxyz"

// PasswordFits reports whether plaintext is within bcrypt's input limit.
func PasswordFits(plaintext string) bool {
	return len(plaintext) <= MaxPasswordBytes
}

// BcryptHasher hashes passwords with bcrypt at a fixed cost. bcrypt embeds a
// random salt in every hash, so hashing the same plaintext twice yields two
// different strings of the same length.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash fails only when ctx is already done or the plaintext exceeds bcrypt's
// 72 byte input limit.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares in constant time. Malformed hashes and hashes from other
// algorithms report false.
func (h *BcryptHasher) Verify(_ context.Context, plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
