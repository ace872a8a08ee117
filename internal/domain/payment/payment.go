package payment

import (
	"context"
	"errors"
)

// ErrProvider wraps any failure reported by the external payment provider.
var ErrProvider = errors.New("payment: provider failure")

// LineItem is one priced entry in a session request. UnitAmount is the
// effective sale-aware unit price at checkout time.
type LineItem struct {
	ProductID  string
	Name       string
	UnitAmount float64
	Quantity   int
}

type SessionRequest struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// Session is the provider's opaque pending-payment object.
type Session struct {
	ID  string
	URL string
}

// Provider creates hosted payment sessions. Implementations may fail for
// network or validation reasons; callers propagate, never retry.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}
