package entity

// Identity is the caller established for one request from a verified token.
// The zero value is the anonymous caller. It is never persisted.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
}

// Anonymous returns the identity of a caller that presented no usable credentials.
func Anonymous() Identity { return Identity{} }

// Authenticated reports whether the caller was resolved to an existing user.
func (i Identity) Authenticated() bool {
	return i.Role == RoleUser && i.UserID > 0
}
