package catalog

import (
	"errors"
	"time"
)

var (
	ErrCategoryNotFound     = errors.New("catalog: category not found")
	ErrCategoryNameRequired = errors.New("catalog: category name is required")
	ErrCategoryExists       = errors.New("catalog: category name already taken")
)

// Category groups products by membership. It references product ids and
// never owns product lifecycle; a product may belong to any number of
// categories, including none.
type Category struct {
	ID         string
	Name       string
	Image      string
	ProductIDs []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewCategory(id, name, image string) (*Category, error) {
	if name == "" {
		return nil, ErrCategoryNameRequired
	}
	now := time.Now().UTC()
	return &Category{
		ID:        id,
		Name:      name,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddProduct records membership. Adding an existing member is a no-op.
func (c *Category) AddProduct(productID string) {
	for _, id := range c.ProductIDs {
		if id == productID {
			return
		}
	}
	c.ProductIDs = append(c.ProductIDs, productID)
	c.UpdatedAt = time.Now().UTC()
}

func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	clone := *c
	clone.ProductIDs = append([]string(nil), c.ProductIDs...)
	return &clone
}
