package domain

import "time"

// Claims is the payload carried inside a bearer token. Role is a snapshot
// taken at issuance and may be stale by the time the token is presented.
type Claims struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
	// Extra holds any additional caller-supplied claims. Reserved keys
	// (sub, role, exp, iat, iss) are ignored here.
	Extra map[string]any
}
