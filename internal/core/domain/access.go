package domain

// RequireRole is the access guard applied by callers: it passes only when an
// identity is present and carries one of the allowed roles.
//
// Ownership scoping is not decided here; repositories filter by owner id.
func RequireRole(identity *ResolvedIdentity, allowed ...Role) error {
	if identity == nil {
		return ErrForbidden
	}
	for _, r := range allowed {
		if identity.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
