package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("user: not found")
	ErrConflict        = errors.New("user: username or email already taken")
	ErrLineNotFound    = errors.New("user: no basket line for product")
	ErrInvalidQuantity = errors.New("user: quantity must be greater than zero")
	ErrOrderNotFound   = errors.New("user: order not found")
	ErrInvalidInput    = errors.New("user: username and email are required")
)

// BasketItem is one aggregated basket line: a product reference with a
// summed quantity. A user's basket holds at most one line per product.
type BasketItem struct {
	ProductID string
	Quantity  int
	DateAdded time.Time
}

type OrderStatus string

const (
	// OrderProvisional marks an order written before its payment session
	// has been confirmed.
	OrderProvisional OrderStatus = "provisional"
	OrderConfirmed   OrderStatus = "confirmed"
	OrderFailed      OrderStatus = "failed"
)

// Order is one entry in a user's append-only order history. ProductIDs is
// the flat purchased-units list as submitted, one entry per unit.
type Order struct {
	ID           string
	ProductIDs   []string
	PurchaseDate time.Time
	SessionID    string
	Status       OrderStatus
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Basket       []BasketItem
	Orders       []Order
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func New(id, username, email, passwordHash string) (*User, error) {
	if username == "" || email == "" {
		return nil, ErrInvalidInput
	}
	now := time.Now().UTC()
	return &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) basketLine(productID string) *BasketItem {
	for i := range u.Basket {
		if u.Basket[i].ProductID == productID {
			return &u.Basket[i]
		}
	}
	return nil
}

// AddBasketItem merges quantity into an existing line for the product or
// appends a new line. Never produces two lines for the same product.
func (u *User) AddBasketItem(productID string, quantity int, now time.Time) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if line := u.basketLine(productID); line != nil {
		line.Quantity += quantity
		u.touch()
		return nil
	}
	u.Basket = append(u.Basket, BasketItem{
		ProductID: productID,
		Quantity:  quantity,
		DateAdded: now,
	})
	u.touch()
	return nil
}

// RemoveBasketItem drops the whole line for the product regardless of its
// quantity.
func (u *User) RemoveBasketItem(productID string) error {
	for i := range u.Basket {
		if u.Basket[i].ProductID == productID {
			u.Basket = append(u.Basket[:i], u.Basket[i+1:]...)
			u.touch()
			return nil
		}
	}
	return ErrLineNotFound
}

// DecrementBasketItem reduces the line's quantity by one; a line at
// quantity one is removed rather than kept at zero.
func (u *User) DecrementBasketItem(productID string) error {
	line := u.basketLine(productID)
	if line == nil {
		return ErrLineNotFound
	}
	if line.Quantity > 1 {
		line.Quantity--
		u.touch()
		return nil
	}
	return u.RemoveBasketItem(productID)
}

func (u *User) ClearBasket() {
	u.Basket = nil
	u.touch()
}

// AppendOrder adds an order to the history. The history is append-only;
// nothing ever removes entries.
func (u *User) AppendOrder(order Order) {
	u.Orders = append(u.Orders, order)
	u.touch()
}

// OrderBySession locates the history entry carrying the payment session id.
func (u *User) OrderBySession(sessionID string) *Order {
	if sessionID == "" {
		return nil
	}
	for i := range u.Orders {
		if u.Orders[i].SessionID == sessionID {
			return &u.Orders[i]
		}
	}
	return nil
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Basket = append([]BasketItem(nil), u.Basket...)
	clone.Orders = make([]Order, len(u.Orders))
	for i, o := range u.Orders {
		o.ProductIDs = append([]string(nil), o.ProductIDs...)
		clone.Orders[i] = o
	}
	return &clone
}
