package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/storefronthq/storefront/internal/domain/catalog"
)

// CategoryRepository is a mutex-guarded document store for categories with
// a name lookup index.
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
	names      map[string]string
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		categories: make(map[string]*domain.Category),
		names:      make(map[string]string),
	}
}

func (r *CategoryRepository) Insert(ctx context.Context, category *domain.Category) error {
	_ = ctx
	if category == nil || category.ID == "" {
		return fmt.Errorf("category repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[category.Name]; exists {
		return domain.ErrCategoryExists
	}

	r.categories[category.ID] = category.Clone()
	r.names[category.Name] = category.ID
	return nil
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (*domain.Category, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return category.Clone(), nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[name]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	category, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return category.Clone(), nil
}

// List returns all categories sorted by name ascending.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.categories[id]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.names, category.Name)
	delete(r.categories, id)
	return nil
}

func (r *CategoryRepository) Mutate(ctx context.Context, id string, fn func(*domain.Category) error) (*domain.Category, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.categories[id] = working
	r.names[working.Name] = working.ID
	return working.Clone(), nil
}
