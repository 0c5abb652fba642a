package store

import (
	"context"
	"path/filepath"
	"testing"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

// newTestBoltStore opens an initialized BoltStore on a temp file.
func newTestBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "storefront.db"), 0o600, nil)
	require.NoError(t, err, "Failed to open bolt database")
	t.Cleanup(func() { _ = db.Close() })

	s := NewBoltStore(db)
	require.NoError(t, s.Init(context.Background()), "Init should not fail")
	return s
}

func testProduct(id int64, category string) Product {
	return Product{
		ID:       id,
		Title:    "Product",
		Price:    9.99,
		Category: category,
		Images:   []string{"thumb.jpg"},
	}
}

func Test_BoltStore_Init_Idempotent(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)
	require.NoError(t, s.StoreProducts(ctx, []Product{testProduct(1, "smartphones")}))

	// when: a second Init runs against the populated file
	require.NoError(t, s.Init(ctx))

	// then: existing data survives
	products, err := s.FindAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func Test_BoltStore_StoreProducts_InsertIfAbsent(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)
	original := testProduct(1, "smartphones")
	require.NoError(t, s.StoreProducts(ctx, []Product{original}))

	// when: the same id arrives again with different fields
	changed := original
	changed.Title = "Renamed"
	changed.Price = 1.00
	require.NoError(t, s.StoreProducts(ctx, []Product{changed, testProduct(2, "laptops")}))

	// then: the first write wins, the new id is appended
	products, err := s.FindAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, original, products[0], "existing product should never be overwritten")
	assert.Equal(t, int64(2), products[1].ID)
}

func Test_BoltStore_FindProductsByCategory(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)
	require.NoError(t, s.StoreProducts(ctx, []Product{
		testProduct(1, "smartphones"),
		testProduct(2, "laptops"),
		testProduct(3, "smartphones"),
	}))

	// when
	matched, err := s.FindProductsByCategory(ctx, "smartphones")
	// then
	require.NoError(t, err)
	require.Len(t, matched, 2)
	for _, p := range matched {
		assert.Equal(t, "smartphones", p.Category)
	}

	// no partial matching
	none, err := s.FindProductsByCategory(ctx, "smart")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func Test_BoltStore_FindProductByID(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)
	stored := testProduct(1, "smartphones")
	require.NoError(t, s.StoreProducts(ctx, []Product{stored}))

	// when / then
	found, err := s.FindProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &stored, found)

	_, err = s.FindProductByID(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func Test_BoltStore_AddCartItem(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)
	product := testProduct(1, "smartphones")

	// when: two adds for the same product
	qty, err := s.AddCartItem(ctx, product, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), qty)

	qty, err = s.AddCartItem(ctx, product, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty, "second add should increment, not replace")

	// then: one line, and the product is persisted too
	items, err := s.CartItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)
	assert.Equal(t, product, items[0].Product)

	_, err = s.FindProductByID(ctx, 1)
	require.NoError(t, err, "adding to cart should persist the product record")
}

func Test_BoltStore_SetCartQuantity(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)
	_, err := s.AddCartItem(ctx, testProduct(1, "smartphones"), 2)
	require.NoError(t, err)

	// when: setting an existing line
	require.NoError(t, s.SetCartQuantity(ctx, 1, 7))
	items, err := s.CartItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].Quantity)

	// when: setting a missing line
	require.NoError(t, s.SetCartQuantity(ctx, 999, 3))
	items, err = s.CartItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "a missing line must be a no-op, not an insert")
}

func Test_BoltStore_RemoveCartItem(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)
	_, err := s.AddCartItem(ctx, testProduct(1, "smartphones"), 1)
	require.NoError(t, err)
	_, err = s.AddCartItem(ctx, testProduct(2, "laptops"), 1)
	require.NoError(t, err)

	// when
	require.NoError(t, s.RemoveCartItem(ctx, 1))
	// removing again is a no-op
	require.NoError(t, s.RemoveCartItem(ctx, 1))

	// then
	items, err := s.CartItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Product.ID)
}

func Test_BoltStore_ClearCart(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)
	_, err := s.AddCartItem(ctx, testProduct(1, "smartphones"), 1)
	require.NoError(t, err)

	// when
	require.NoError(t, s.ClearCart(ctx))

	// then: the cart is empty, the product record survives
	items, err := s.CartItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	products, err := s.FindAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func Test_BoltStore_Favorites(t *testing.T) {
	// given
	ctx := context.Background()
	s := newTestBoltStore(t)

	// when / then: set semantics
	require.NoError(t, s.AddFavorite(ctx, 1))
	require.NoError(t, s.AddFavorite(ctx, 2))
	require.NoError(t, s.AddFavorite(ctx, 1))

	ids, err := s.Favorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids, "duplicate add should be a no-op")

	require.NoError(t, s.RemoveFavorite(ctx, 1))
	require.NoError(t, s.RemoveFavorite(ctx, 999))

	ids, err = s.Favorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)

	require.NoError(t, s.ClearFavorites(ctx))
	ids, err = s.Favorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
