package user

import "context"

// Repository is the document-store port for users. Mutate runs fn against
// the stored record under the record's write scope and commits only when fn
// returns nil; basket-line merges and order appends rely on this to stay
// serialized per user.
type Repository interface {
	Insert(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Mutate(ctx context.Context, id string, fn func(*User) error) (*User, error)
	// MutateOrderBySession applies fn to the order carrying the session id,
	// whichever user owns it. ErrOrderNotFound when no order matches.
	MutateOrderBySession(ctx context.Context, sessionID string, fn func(*Order) error) error
}
