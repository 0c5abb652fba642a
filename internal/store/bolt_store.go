package store

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	bolt "go.etcd.io/bbolt"
)

const boltBucket = "storefront"

// Blob keys inside the bucket. Each key holds one whole collection encoded
// as a single JSON array, mirroring the flat key-value layout.
const (
	keyProducts  = "products"
	keyCart      = "cart"
	keyFavorites = "favorites"
)

// BoltStore implements Store on an embedded bbolt file. Cart lines embed a
// full copy of their product, so reads never need a second lookup.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a BoltStore over an open bbolt database.
func NewBoltStore(db *bolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

// Init creates the bucket and seeds each missing collection key with an
// empty array. Existing data is left untouched; safe to call repeatedly.
func (s *BoltStore) Init(_ context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		if err != nil {
			return err
		}
		for _, key := range []string{keyProducts, keyCart, keyFavorites} {
			if b.Get([]byte(key)) == nil {
				if err := b.Put([]byte(key), []byte("[]")); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStorage("init", err)
	}
	return nil
}

// FindAllProducts returns every persisted product.
func (s *BoltStore) FindAllProducts(ctx context.Context) ([]Product, error) {
	products, err := viewBlob[Product](s, keyProducts)
	if err != nil {
		return nil, apperrors.NewStorage("products.find_all", err)
	}
	return products, nil
}

// FindProductsByCategory filters the persisted products by exact category.
func (s *BoltStore) FindProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	products, err := viewBlob[Product](s, keyProducts)
	if err != nil {
		return nil, apperrors.NewStorage("products.find_by_category", err)
	}
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// FindProductByID retrieves a product by id.
// Returns ErrProductNotFound if the blob holds no such product.
func (s *BoltStore) FindProductByID(ctx context.Context, id int64) (*Product, error) {
	products, err := viewBlob[Product](s, keyProducts)
	if err != nil {
		return nil, apperrors.NewStorage("products.find_by_id", err)
	}
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperrors.ErrProductNotFound
}

// StoreProducts appends each product not already present to the blob.
// Existing entries are never overwritten (insert-if-absent).
func (s *BoltStore) StoreProducts(ctx context.Context, products []Product) error {
	err := updateBlobAs(s, keyProducts, func(stored []Product) []Product {
		return appendAbsentProducts(stored, products)
	})
	if err != nil {
		return apperrors.NewStorage("products.store", err)
	}
	return nil
}

// CartItems returns all cart lines.
func (s *BoltStore) CartItems(ctx context.Context) ([]CartItem, error) {
	items, err := viewBlob[CartItem](s, keyCart)
	if err != nil {
		return nil, apperrors.NewStorage("cart.items", err)
	}
	return items, nil
}

// AddCartItem increments the line for the product or appends a new one, and
// commits the product itself under the insert-if-absent rule. Returns the
// resulting absolute quantity.
func (s *BoltStore) AddCartItem(ctx context.Context, product Product, quantity int64) (int64, error) {
	var newQuantity int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(boltBucket))
		if b == nil {
			return fmt.Errorf("bucket %q does not exist; store not initialized", boltBucket)
		}

		products, err := decodeBlob[Product](b, keyProducts)
		if err != nil {
			return err
		}
		if err := encodeBlob(b, keyProducts, appendAbsentProducts(products, []Product{product})); err != nil {
			return err
		}

		items, err := decodeBlob[CartItem](b, keyCart)
		if err != nil {
			return err
		}
		found := false
		for i := range items {
			if items[i].Product.ID == product.ID {
				items[i].Quantity += quantity
				newQuantity = items[i].Quantity
				found = true
				break
			}
		}
		if !found {
			items = append(items, CartItem{Product: product, Quantity: quantity})
			newQuantity = quantity
		}
		return encodeBlob(b, keyCart, items)
	})
	if err != nil {
		return 0, apperrors.NewStorage("cart.add", err)
	}
	return newQuantity, nil
}

// SetCartQuantity sets the absolute quantity for the product's line.
// A missing line leaves the cart unchanged.
func (s *BoltStore) SetCartQuantity(ctx context.Context, productID, quantity int64) error {
	err := updateBlobAs(s, keyCart, func(items []CartItem) []CartItem {
		for i := range items {
			if items[i].Product.ID == productID {
				items[i].Quantity = quantity
				break
			}
		}
		return items
	})
	if err != nil {
		return apperrors.NewStorage("cart.set_quantity", err)
	}
	return nil
}

// RemoveCartItem deletes the line for the product, if any.
func (s *BoltStore) RemoveCartItem(ctx context.Context, productID int64) error {
	err := updateBlobAs(s, keyCart, func(items []CartItem) []CartItem {
		kept := items[:0]
		for _, item := range items {
			if item.Product.ID != productID {
				kept = append(kept, item)
			}
		}
		return kept
	})
	if err != nil {
		return apperrors.NewStorage("cart.remove", err)
	}
	return nil
}

// ClearCart resets the cart blob to an empty array.
func (s *BoltStore) ClearCart(ctx context.Context) error {
	err := updateBlobAs(s, keyCart, func([]CartItem) []CartItem {
		return []CartItem{}
	})
	if err != nil {
		return apperrors.NewStorage("cart.clear", err)
	}
	return nil
}

// Favorites returns the favorite product ids.
func (s *BoltStore) Favorites(ctx context.Context) ([]int64, error) {
	ids, err := viewBlob[int64](s, keyFavorites)
	if err != nil {
		return nil, apperrors.NewStorage("favorites.list", err)
	}
	return ids, nil
}

// AddFavorite marks the product as favorite. No-op when already marked.
func (s *BoltStore) AddFavorite(ctx context.Context, productID int64) error {
	err := updateBlobAs(s, keyFavorites, func(ids []int64) []int64 {
		for _, id := range ids {
			if id == productID {
				return ids
			}
		}
		return append(ids, productID)
	})
	if err != nil {
		return apperrors.NewStorage("favorites.add", err)
	}
	return nil
}

// RemoveFavorite unmarks the product, if marked.
func (s *BoltStore) RemoveFavorite(ctx context.Context, productID int64) error {
	err := updateBlobAs(s, keyFavorites, func(ids []int64) []int64 {
		kept := ids[:0]
		for _, id := range ids {
			if id != productID {
				kept = append(kept, id)
			}
		}
		return kept
	})
	if err != nil {
		return apperrors.NewStorage("favorites.remove", err)
	}
	return nil
}

// ClearFavorites resets the favorites blob to an empty array.
func (s *BoltStore) ClearFavorites(ctx context.Context) error {
	err := updateBlobAs(s, keyFavorites, func([]int64) []int64 {
		return []int64{}
	})
	if err != nil {
		return apperrors.NewStorage("favorites.clear", err)
	}
	return nil
}

func appendAbsentProducts(stored, incoming []Product) []Product {
	present := make(map[int64]struct{}, len(stored))
	for _, p := range stored {
		present[p.ID] = struct{}{}
	}
	for _, p := range incoming {
		if _, ok := present[p.ID]; ok {
			continue
		}
		stored = append(stored, p)
		present[p.ID] = struct{}{}
	}
	return stored
}

func viewBlob[T any](s *BoltStore, key string) ([]T, error) {
	var out []T
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(boltBucket))
		if b == nil {
			return fmt.Errorf("bucket %q does not exist; store not initialized", boltBucket)
		}
		var err error
		out, err = decodeBlob[T](b, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// updateBlobAs rewrites one collection key inside a single write transaction.
func updateBlobAs[T any](s *BoltStore, key string, fn func([]T) []T) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(boltBucket))
		if b == nil {
			return fmt.Errorf("bucket %q does not exist; store not initialized", boltBucket)
		}
		stored, err := decodeBlob[T](b, key)
		if err != nil {
			return err
		}
		return encodeBlob(b, key, fn(stored))
	})
}

func decodeBlob[T any](b *bolt.Bucket, key string) ([]T, error) {
	raw := b.Get([]byte(key))
	if raw == nil {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s blob: %w", key, err)
	}
	return out, nil
}

func encodeBlob[T any](b *bolt.Bucket, key string, v []T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s blob: %w", key, err)
	}
	return b.Put([]byte(key), raw)
}
