package auth

import "errors"

// ErrUnauthenticated is returned by the authorization gate when an
// operation requiring an identity is invoked without one.
var ErrUnauthenticated = errors.New("auth: authentication required")

// Identity is the verified caller attached to a request. It is passed
// explicitly to every mutating operation; there is no ambient
// request-scoped identity.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// IsZero reports whether no authenticated identity is present.
func (id Identity) IsZero() bool { return id.UserID == "" }

// Require is the fail-closed gate: it rejects a missing identity before
// any state is touched. There is no role distinction; any authenticated
// identity passes.
func Require(id Identity) error {
	if id.IsZero() {
		return ErrUnauthenticated
	}
	return nil
}
