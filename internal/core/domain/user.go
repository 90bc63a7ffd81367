package domain

import "time"

// User models a registered account. PasswordHash always holds the output of
// the password hasher, never the plaintext.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	Role         Role      `json:"role"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ResolvedIdentity is the per-request projection of a User used for
// authorization decisions. Role is read from the store at resolution time.
type ResolvedIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Identity projects the user into the shape carried through a request.
func (u *User) Identity() *ResolvedIdentity {
	return &ResolvedIdentity{ID: u.ID, Username: u.Username, Role: u.Role}
}
