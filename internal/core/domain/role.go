package domain

import (
	"fmt"
	"strings"
)

// Role is stored and transmitted as a plain string but only the values below
// are accepted when parsing external input.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
)

// ParseRole normalises s and rejects anything outside the known roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleManager
}

func (r Role) String() string { return string(r) }
