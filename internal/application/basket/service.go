package basket

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storefronthq/storefront/internal/application/auth"
	domcatalog "github.com/storefronthq/storefront/internal/domain/catalog"
	domuser "github.com/storefronthq/storefront/internal/domain/user"
	"github.com/storefronthq/storefront/internal/pkg/logging"
)

// Service owns basket aggregation: repeated additions of the same product
// merge into one line with a summed quantity, decrements collapse the line
// at one. Missing lines surface as not-found rather than silent no-ops so
// client bugs stay visible.
type Service struct {
	users    domuser.Repository
	products domcatalog.ProductRepository
}

func NewService(users domuser.Repository, products domcatalog.ProductRepository) *Service {
	return &Service{
		users:    users,
		products: products,
	}
}

func (s *Service) AddItem(ctx context.Context, ident auth.Identity, productID string, quantity int) (*domuser.User, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With(zap.String("component", "basket_service"))

	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, err := s.users.Mutate(ctx, ident.UserID, func(u *domuser.User) error {
		return u.AddBasketItem(productID, quantity, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("basket_item_added",
		zap.String("user_id", ident.UserID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return updated, nil
}

func (s *Service) RemoveItem(ctx context.Context, ident auth.Identity, productID string) (*domuser.User, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}

	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	return s.users.Mutate(ctx, ident.UserID, func(u *domuser.User) error {
		return u.RemoveBasketItem(productID)
	})
}

func (s *Service) DecrementItem(ctx context.Context, ident auth.Identity, productID string) (*domuser.User, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}

	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	return s.users.Mutate(ctx, ident.UserID, func(u *domuser.User) error {
		return u.DecrementBasketItem(productID)
	})
}

func (s *Service) Clear(ctx context.Context, ident auth.Identity) (*domuser.User, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}

	return s.users.Mutate(ctx, ident.UserID, func(u *domuser.User) error {
		u.ClearBasket()
		return nil
	})
}

// Line is one basket entry populated with live product data for display.
type Line struct {
	ProductID string
	Quantity  int
	DateAdded time.Time
	Product   *domcatalog.Product
	// Unavailable marks a line whose product has since been deleted; it is
	// priced at zero and kept in the basket.
	Unavailable bool
	UnitPrice   float64
	LineTotal   float64
}

// View is the priced basket. Count is the number of distinct lines, not
// total units. Total is computed at read time from live catalog data,
// sale-aware, and never cached on the user record.
type View struct {
	Lines  []Line
	Count  int
	Total  float64
	Orders []domuser.Order
}

func (s *Service) View(ctx context.Context, ident auth.Identity) (*View, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}

	u, err := s.users.Get(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	view := &View{
		Lines:  make([]Line, 0, len(u.Basket)),
		Count:  len(u.Basket),
		Orders: u.Orders,
	}
	for _, item := range u.Basket {
		line := Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			DateAdded: item.DateAdded,
		}
		product, err := s.products.Get(ctx, item.ProductID)
		switch {
		case errors.Is(err, domcatalog.ErrNotFound):
			line.Unavailable = true
		case err != nil:
			return nil, err
		default:
			line.Product = product
			line.UnitPrice = product.EffectivePrice()
			line.LineTotal = line.UnitPrice * float64(item.Quantity)
		}
		view.Total += line.LineTotal
		view.Lines = append(view.Lines, line)
	}

	return view, nil
}
