package review

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/storefronthq/storefront/internal/application/auth"
	domain "github.com/storefronthq/storefront/internal/domain/catalog"
	"github.com/storefronthq/storefront/internal/pkg/logging"
)

type IDGenerator interface {
	NewID() string
}

// Service moderates product reviews: at most one review per (product,
// username), with edit-in-place. The author label is the identity's
// username copied at creation time.
type Service struct {
	products    domain.ProductRepository
	idGenerator IDGenerator
}

func NewService(products domain.ProductRepository, idGen IDGenerator) *Service {
	return &Service{
		products:    products,
		idGenerator: idGen,
	}
}

// AddReview appends a review authored by the caller. The duplicate check
// and the append run inside one repository mutation, so two concurrent
// calls by the same user cannot both succeed.
func (s *Service) AddReview(ctx context.Context, ident auth.Identity, productID, body string, rating int) (*domain.Product, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With(zap.String("component", "review_service"))

	updated, err := s.products.Mutate(ctx, productID, func(p *domain.Product) error {
		return p.AddReview(domain.Review{
			ID:        s.idGenerator.NewID(),
			Username:  ident.Username,
			Body:      body,
			Rating:    rating,
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("review_added",
		zap.String("product_id", productID),
		zap.String("username", ident.Username),
		zap.Int("rating", rating),
	)
	return updated, nil
}

// EditReview overwrites the caller's existing review in place, keeping its
// creation timestamp. Editing without a prior review is a not-found
// condition, not an authorization failure.
func (s *Service) EditReview(ctx context.Context, ident auth.Identity, productID, body string, rating int) (*domain.Product, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With(zap.String("component", "review_service"))

	updated, err := s.products.Mutate(ctx, productID, func(p *domain.Product) error {
		return p.EditReview(ident.Username, body, rating)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("review_edited",
		zap.String("product_id", productID),
		zap.String("username", ident.Username),
	)
	return updated, nil
}
