package catalog

import "context"

// ProductRepository is the document-store port for products. Mutate runs fn
// against the stored record under the record's write scope and commits only
// when fn returns nil, so check-then-act sequences such as conditional stock
// deduction and the one-review-per-user check are indivisible.
type ProductRepository interface {
	Insert(ctx context.Context, product *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Delete(ctx context.Context, id string) error
	Mutate(ctx context.Context, id string, fn func(*Product) error) (*Product, error)
}

// CategoryRepository is the document-store port for categories.
type CategoryRepository interface {
	Insert(ctx context.Context, category *Category) error
	Get(ctx context.Context, id string) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, id string) error
	Mutate(ctx context.Context, id string, fn func(*Category) error) (*Category, error)
}
