package basket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefronthq/storefront/internal/application/auth"
	domcatalog "github.com/storefronthq/storefront/internal/domain/catalog"
	domuser "github.com/storefronthq/storefront/internal/domain/user"
	"github.com/storefronthq/storefront/internal/infrastructure/memory"
)

func newFixture(t *testing.T) (*Service, *memory.ProductRepository, *memory.UserRepository, auth.Identity) {
	t.Helper()
	products := memory.NewProductRepository()
	users := memory.NewUserRepository()

	u, err := domuser.New("u1", "ada", "ada@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, users.Insert(context.Background(), u))

	return NewService(users, products), products, users, auth.Identity{UserID: "u1", Username: "ada"}
}

func addProduct(t *testing.T, products *memory.ProductRepository, id, name string, price float64, stock int) {
	t.Helper()
	p, err := domcatalog.NewProduct(id, name, "", "", price, stock)
	require.NoError(t, err)
	require.NoError(t, products.Insert(context.Background(), p))
}

func TestAddItemAggregatesQuantity(t *testing.T) {
	svc, products, _, ident := newFixture(t)
	addProduct(t, products, "p1", "Kettle", 25, 10)

	_, err := svc.AddItem(context.Background(), ident, "p1", 2)
	require.NoError(t, err)
	updated, err := svc.AddItem(context.Background(), ident, "p1", 3)
	require.NoError(t, err)

	require.Len(t, updated.Basket, 1, "adding the same product twice yields one line")
	assert.Equal(t, 5, updated.Basket[0].Quantity)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _, ident := newFixture(t)
	_, err := svc.AddItem(context.Background(), ident, "ghost", 1)
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)
}

func TestAddItemUnauthenticatedNoStateChange(t *testing.T) {
	svc, products, users, _ := newFixture(t)
	addProduct(t, products, "p1", "Kettle", 25, 10)

	_, err := svc.AddItem(context.Background(), auth.Identity{}, "p1", 1)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	u, err := users.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, u.Basket)
}

func TestRemoveItemMissingLineIsNotFound(t *testing.T) {
	svc, products, _, ident := newFixture(t)
	addProduct(t, products, "p1", "Kettle", 25, 10)

	_, err := svc.RemoveItem(context.Background(), ident, "p1")
	assert.ErrorIs(t, err, domuser.ErrLineNotFound)
}

func TestDecrementItemSemantics(t *testing.T) {
	svc, products, _, ident := newFixture(t)
	addProduct(t, products, "p1", "Kettle", 25, 10)

	_, err := svc.AddItem(context.Background(), ident, "p1", 2)
	require.NoError(t, err)

	updated, err := svc.DecrementItem(context.Background(), ident, "p1")
	require.NoError(t, err)
	require.Len(t, updated.Basket, 1)
	assert.Equal(t, 1, updated.Basket[0].Quantity)

	updated, err = svc.DecrementItem(context.Background(), ident, "p1")
	require.NoError(t, err)
	assert.Empty(t, updated.Basket, "decrement at quantity one removes the line")
}

func TestClearAlwaysEmpties(t *testing.T) {
	svc, products, _, ident := newFixture(t)
	addProduct(t, products, "p1", "Kettle", 25, 10)
	addProduct(t, products, "p2", "Teapot", 40, 10)

	_, err := svc.AddItem(context.Background(), ident, "p1", 2)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), ident, "p2", 1)
	require.NoError(t, err)

	updated, err := svc.Clear(context.Background(), ident)
	require.NoError(t, err)
	assert.Empty(t, updated.Basket)

	updated, err = svc.Clear(context.Background(), ident)
	require.NoError(t, err)
	assert.Empty(t, updated.Basket)
}

func TestViewPricesSaleAware(t *testing.T) {
	svc, products, _, ident := newFixture(t)
	addProduct(t, products, "p1", "Kettle", 25, 10)
	addProduct(t, products, "p2", "Teapot", 40, 10)

	_, err := products.Mutate(context.Background(), "p2", func(p *domcatalog.Product) error {
		return p.SetSalePrice(30)
	})
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), ident, "p1", 2)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), ident, "p2", 3)
	require.NoError(t, err)

	view, err := svc.View(context.Background(), ident)
	require.NoError(t, err)

	assert.Equal(t, 2, view.Count, "count is distinct lines, not units")
	assert.InDelta(t, 2*25+3*30.0, view.Total, 1e-9)
}

func TestViewFlagsDeletedProducts(t *testing.T) {
	svc, products, _, ident := newFixture(t)
	addProduct(t, products, "p1", "Kettle", 25, 10)

	_, err := svc.AddItem(context.Background(), ident, "p1", 2)
	require.NoError(t, err)
	require.NoError(t, products.Delete(context.Background(), "p1"))

	view, err := svc.View(context.Background(), ident)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1, "deleting a product does not purge basket lines")
	assert.True(t, view.Lines[0].Unavailable)
	assert.Zero(t, view.Lines[0].LineTotal)
	assert.Zero(t, view.Total)
}
