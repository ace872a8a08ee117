package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefronthq/storefront/internal/application/auth"
	domain "github.com/storefronthq/storefront/internal/domain/catalog"
	"github.com/storefronthq/storefront/internal/pkg/logging"
)

type IDGenerator interface {
	NewID() string
}

// Service owns product records and stock counts. Reads are public;
// every mutation passes the authorization gate first.
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

type CreateProductInput struct {
	Name        string
	Description string
	Image       string
	Price       float64
	// SalePrice, when set, puts the product on sale immediately.
	SalePrice *float64
	Stock     int
}

func (s *Service) CreateProduct(ctx context.Context, ident auth.Identity, input CreateProductInput) (*domain.Product, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With(zap.String("component", "catalog_service"))

	entity, err := domain.NewProduct(s.idGenerator.NewID(), input.Name, input.Description, input.Image, input.Price, input.Stock)
	if err != nil {
		return nil, err
	}
	if input.SalePrice != nil {
		if err := entity.SetSalePrice(*input.SalePrice); err != nil {
			return nil, err
		}
	}
	if err := s.products.Insert(ctx, entity); err != nil {
		logger.Error("product_insert_failed", zap.Error(err))
		return nil, fmt.Errorf("catalog: insert: %w", err)
	}

	logger.Info("product_created",
		zap.String("product_id", entity.ID),
		zap.String("name", entity.Name),
	)
	return entity, nil
}

func (s *Service) DeleteProduct(ctx context.Context, ident auth.Identity, id string) error {
	if err := auth.Require(ident); err != nil {
		return err
	}
	logger := logging.FromContext(ctx).With(zap.String("component", "catalog_service"))

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	// Baskets referencing the product keep their lines; the basket view
	// flags them unavailable instead.
	logger.Info("product_deleted", zap.String("product_id", id))
	return nil
}

func (s *Service) AddStock(ctx context.Context, ident auth.Identity, id string, quantity int) (*domain.Product, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	return s.products.Mutate(ctx, id, func(p *domain.Product) error {
		return p.AddStock(quantity)
	})
}

// RemoveStock deducts stock conditionally: the availability check and the
// decrement happen in one repository mutation, so concurrent removals for
// the same product cannot drive stock negative.
func (s *Service) RemoveStock(ctx context.Context, ident auth.Identity, id string, quantity int) (*domain.Product, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	return s.products.Mutate(ctx, id, func(p *domain.Product) error {
		return p.RemoveStock(quantity)
	})
}

func (s *Service) SetSalePrice(ctx context.Context, ident auth.Identity, id string, price float64) (*domain.Product, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	return s.products.Mutate(ctx, id, func(p *domain.Product) error {
		return p.SetSalePrice(price)
	})
}

func (s *Service) ClearSalePrice(ctx context.Context, ident auth.Identity, id string) (*domain.Product, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	return s.products.Mutate(ctx, id, func(p *domain.Product) error {
		p.ClearSalePrice()
		return nil
	})
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}

// ListProducts returns the catalog sorted by name ascending.
func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}
