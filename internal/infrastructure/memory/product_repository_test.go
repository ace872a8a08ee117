package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/storefronthq/storefront/internal/domain/catalog"
)

func insertProduct(t *testing.T, repo *ProductRepository, id, name string, stock int) {
	t.Helper()
	p, err := domain.NewProduct(id, name, "", "", 10, stock)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), p))
}

func TestProductRepositoryGetMissing(t *testing.T) {
	repo := NewProductRepository()
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepositoryListSortedByName(t *testing.T) {
	repo := NewProductRepository()
	insertProduct(t, repo, "p1", "zinc", 0)
	insertProduct(t, repo, "p2", "apple", 0)
	insertProduct(t, repo, "p3", "mango", 0)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "apple", list[0].Name)
	assert.Equal(t, "mango", list[1].Name)
	assert.Equal(t, "zinc", list[2].Name)
}

func TestProductRepositoryDelete(t *testing.T) {
	repo := NewProductRepository()
	insertProduct(t, repo, "p1", "apple", 0)

	require.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "p1"), domain.ErrNotFound)
}

func TestProductRepositoryMutateRollsBackOnError(t *testing.T) {
	repo := NewProductRepository()
	insertProduct(t, repo, "p1", "apple", 3)

	_, err := repo.Mutate(context.Background(), "p1", func(p *domain.Product) error {
		return p.RemoveStock(5)
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock, "failed mutation must not commit")
}

func TestProductRepositoryGetReturnsClone(t *testing.T) {
	repo := NewProductRepository()
	insertProduct(t, repo, "p1", "apple", 3)

	first, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	first.Stock = 999

	second, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, second.Stock)
}

func TestConcurrentRemoveStockNeverNegative(t *testing.T) {
	repo := NewProductRepository()
	insertProduct(t, repo, "p1", "apple", 100)

	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Mutate(context.Background(), "p1", func(p *domain.Product) error {
				return p.RemoveStock(1)
			})
		}()
	}
	wg.Wait()

	stored, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock, "exactly 100 of 200 removals may succeed")
	assert.GreaterOrEqual(t, stored.Stock, 0)
}

func TestConcurrentAddReviewOnlyOneSucceeds(t *testing.T) {
	repo := NewProductRepository()
	insertProduct(t, repo, "p1", "apple", 1)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := repo.Mutate(context.Background(), "p1", func(p *domain.Product) error {
				return p.AddReview(domain.Review{ID: string(rune('a' + n)), Username: "ada", Rating: 4})
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
		}
	}
	assert.Equal(t, 1, succeeded)

	stored, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ReviewCount())
}
