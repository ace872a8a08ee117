package category

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/storefronthq/storefront/internal/application/auth"
	domain "github.com/storefronthq/storefront/internal/domain/catalog"
	"github.com/storefronthq/storefront/internal/pkg/logging"
)

type IDGenerator interface {
	NewID() string
}

// Service maintains the category index. Categories hold product membership
// only; product lifecycle stays with the catalog.
type Service struct {
	categories  domain.CategoryRepository
	products    domain.ProductRepository
	idGenerator IDGenerator
}

func NewService(categories domain.CategoryRepository, products domain.ProductRepository, idGen IDGenerator) *Service {
	return &Service{
		categories:  categories,
		products:    products,
		idGenerator: idGen,
	}
}

func (s *Service) CreateCategory(ctx context.Context, ident auth.Identity, name, image string) (*domain.Category, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With(zap.String("component", "category_service"))

	entity, err := domain.NewCategory(s.idGenerator.NewID(), name, image)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Insert(ctx, entity); err != nil {
		return nil, err
	}

	logger.Info("category_created",
		zap.String("category_id", entity.ID),
		zap.String("name", entity.Name),
	)
	return entity, nil
}

func (s *Service) DeleteCategory(ctx context.Context, ident auth.Identity, id string) error {
	if err := auth.Require(ident); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

// AddProduct records membership of an existing product. Repeating the call
// is a no-op.
func (s *Service) AddProduct(ctx context.Context, ident auth.Identity, categoryID, productID string) (*domain.Category, error) {
	if err := auth.Require(ident); err != nil {
		return nil, err
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.categories.Mutate(ctx, categoryID, func(c *domain.Category) error {
		c.AddProduct(productID)
		return nil
	})
}

// Populated is a category read with its member products materialized.
type Populated struct {
	Category *domain.Category
	Products []*domain.Product
}

func (s *Service) populate(ctx context.Context, c *domain.Category) (*Populated, error) {
	out := &Populated{
		Category: c,
		Products: make([]*domain.Product, 0, len(c.ProductIDs)),
	}
	for _, id := range c.ProductIDs {
		product, err := s.products.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			// deleted products fall out of the populated view
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Products = append(out.Products, product)
	}
	return out, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (*Populated, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, c)
}

func (s *Service) GetCategoryByName(ctx context.Context, name string) (*Populated, error) {
	c, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, c)
}

// ListCategories returns all categories sorted by name ascending.
func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) ListCategoryNames(ctx context.Context) ([]string, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}
