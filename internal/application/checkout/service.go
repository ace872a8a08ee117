package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storefronthq/storefront/internal/application/auth"
	domcatalog "github.com/storefronthq/storefront/internal/domain/catalog"
	dompayment "github.com/storefronthq/storefront/internal/domain/payment"
	domuser "github.com/storefronthq/storefront/internal/domain/user"
	"github.com/storefronthq/storefront/internal/pkg/logging"
)

var ErrEmptyCheckout = errors.New("checkout: no products given")

type IDGenerator interface {
	NewID() string
}

// Service converts a flat purchased-units list into an order record, a
// grouped quantity manifest, and a payment session.
//
// The order is appended to the user's history before the payment session is
// attempted, exactly as the storefront has always behaved: a session
// failure leaves a provisional order with no payment attached. The
// confirmation worker upgrades provisional orders when the provider's
// webhook reports the session outcome. Checkout deliberately does not touch
// stock; stock changes stay an administrative catalog operation.
type Service struct {
	users       domuser.Repository
	products    domcatalog.ProductRepository
	provider    dompayment.Provider
	idGenerator IDGenerator
}

func NewService(users domuser.Repository, products domcatalog.ProductRepository, provider dompayment.Provider, idGen IDGenerator) *Service {
	return &Service{
		users:       users,
		products:    products,
		provider:    provider,
		idGenerator: idGen,
	}
}

type Result struct {
	OrderID   string
	SessionID string
	URL       string
}

// Manifest groups a flat product-id list into per-product counts, keeping
// first-seen order so line items come out deterministic.
func Manifest(productIDs []string) (counts map[string]int, order []string) {
	counts = make(map[string]int, len(productIDs))
	for _, id := range productIDs {
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	return counts, order
}

// Checkout runs the pipeline. origin is the caller's originating address,
// used to derive the provider redirect URLs.
func (s *Service) Checkout(ctx context.Context, ident auth.Identity, productIDs []string, origin string) (*Result, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With(
		zap.String("component", "checkout_service"),
		zap.String("user_id", ident.UserID),
	)
	if len(productIDs) == 0 {
		return nil, ErrEmptyCheckout
	}

	orderID := s.idGenerator.NewID()
	order := domuser.Order{
		ID:           orderID,
		ProductIDs:   append([]string(nil), productIDs...),
		PurchaseDate: time.Now().UTC(),
		Status:       domuser.OrderProvisional,
	}
	if _, err := s.users.Mutate(ctx, ident.UserID, func(u *domuser.User) error {
		u.AppendOrder(order)
		return nil
	}); err != nil {
		return nil, err
	}
	logger.Info("order_recorded",
		zap.String("order_id", orderID),
		zap.Int("units", len(productIDs)),
	)

	counts, seen := Manifest(productIDs)

	lineItems := make([]dompayment.LineItem, 0, len(seen))
	for _, productID := range seen {
		product, err := s.products.Get(ctx, productID)
		if err != nil {
			logger.Warn("checkout_product_missing",
				zap.String("order_id", orderID),
				zap.String("product_id", productID),
			)
			return nil, err
		}
		lineItems = append(lineItems, dompayment.LineItem{
			ProductID:  product.ID,
			Name:       product.Name,
			UnitAmount: product.EffectivePrice(),
			Quantity:   counts[productID],
		})
	}

	session, err := s.provider.CreateSession(ctx, dompayment.SessionRequest{
		LineItems:  lineItems,
		SuccessURL: origin + "/checkout/success",
		CancelURL:  origin + "/checkout/cancel",
	})
	if err != nil {
		// The order stays recorded: provisional, with no session attached.
		logger.Error("payment_session_failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("checkout: create session: %w", err)
	}

	if _, err := s.users.Mutate(ctx, ident.UserID, func(u *domuser.User) error {
		for i := range u.Orders {
			if u.Orders[i].ID == orderID {
				u.Orders[i].SessionID = session.ID
				return nil
			}
		}
		return domuser.ErrOrderNotFound
	}); err != nil {
		logger.Error("order_session_attach_failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Info("checkout_success",
		zap.String("order_id", orderID),
		zap.String("session_id", session.ID),
		zap.Int("line_items", len(lineItems)),
	)
	return &Result{
		OrderID:   orderID,
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}
