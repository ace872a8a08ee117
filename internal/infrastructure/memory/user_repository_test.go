package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/storefronthq/storefront/internal/domain/user"
)

func insertUser(t *testing.T, repo *UserRepository, id, username string) {
	t.Helper()
	u, err := domain.New(id, username, username+"@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), u))
}

func TestUserRepositoryUniqueUsernameAndEmail(t *testing.T) {
	repo := NewUserRepository()
	insertUser(t, repo, "u1", "ada")

	dup, err := domain.New("u2", "ada", "other@example.com", "hash")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(context.Background(), dup), domain.ErrConflict)

	dupEmail, err := domain.New("u3", "bob", "ada@example.com", "hash")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(context.Background(), dupEmail), domain.ErrConflict)
}

func TestUserRepositoryGetByUsername(t *testing.T) {
	repo := NewUserRepository()
	insertUser(t, repo, "u1", "ada")

	u, err := repo.GetByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = repo.GetByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcurrentBasketAddsMergeToOneLine(t *testing.T) {
	repo := NewUserRepository()
	insertUser(t, repo, "u1", "ada")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(context.Background(), "u1", func(u *domain.User) error {
				return u.AddBasketItem("p1", 2, time.Now().UTC())
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, u.Basket, 1, "concurrent adds must merge into a single line")
	assert.Equal(t, 100, u.Basket[0].Quantity)
}

func TestMutateOrderBySession(t *testing.T) {
	repo := NewUserRepository()
	insertUser(t, repo, "u1", "ada")

	_, err := repo.Mutate(context.Background(), "u1", func(u *domain.User) error {
		u.AppendOrder(domain.Order{ID: "o1", SessionID: "sess_1", Status: domain.OrderProvisional})
		return nil
	})
	require.NoError(t, err)

	err = repo.MutateOrderBySession(context.Background(), "sess_1", func(o *domain.Order) error {
		o.Status = domain.OrderConfirmed
		return nil
	})
	require.NoError(t, err)

	u, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, u.Orders[0].Status)

	err = repo.MutateOrderBySession(context.Background(), "sess_unknown", func(o *domain.Order) error { return nil })
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
