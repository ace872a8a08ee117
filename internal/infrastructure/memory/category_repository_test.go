package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/storefronthq/storefront/internal/domain/catalog"
)

func insertCategory(t *testing.T, repo *CategoryRepository, id, name string) {
	t.Helper()
	c, err := domain.NewCategory(id, name, "")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), c))
}

func TestCategoryRepositoryDuplicateNameConflicts(t *testing.T) {
	repo := NewCategoryRepository()
	insertCategory(t, repo, "c1", "Kitchen")

	dup, err := domain.NewCategory("c2", "Kitchen", "")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(context.Background(), dup), domain.ErrCategoryExists)

	// the original stays reachable by name
	found, err := repo.GetByName(context.Background(), "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, "c1", found.ID)
}

func TestCategoryRepositoryGetByName(t *testing.T) {
	repo := NewCategoryRepository()
	insertCategory(t, repo, "c1", "Kitchen")

	found, err := repo.GetByName(context.Background(), "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, "c1", found.ID)

	_, err = repo.GetByName(context.Background(), "Garden")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryRepositoryDeleteFreesName(t *testing.T) {
	repo := NewCategoryRepository()
	insertCategory(t, repo, "c1", "Kitchen")

	require.NoError(t, repo.Delete(context.Background(), "c1"))

	_, err := repo.GetByName(context.Background(), "Kitchen")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	// the name can be reused after deletion
	insertCategory(t, repo, "c2", "Kitchen")
	found, err := repo.GetByName(context.Background(), "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, "c2", found.ID)
}
