// Package store provides the on-device persistence layer for the storefront:
// the domain models and the Store contract with its two interchangeable
// backends (PostgreSQL rows or bbolt JSON blobs).
package store

import "context"

// Product is a catalog entry as served by the remote catalog API. ID is
// assigned by the catalog source and is the sole join key from cart lines
// and favorites back to product detail.
type Product struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int64    `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// CartItem pairs a product with the quantity currently in the cart.
// There is at most one line per product id.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

// ProductStore is the product slice of the local store.
type ProductStore interface {
	// FindAllProducts returns every product currently persisted.
	// Returns an empty slice if none exist.
	FindAllProducts(ctx context.Context) ([]Product, error)

	// FindProductsByCategory returns the persisted products whose category
	// matches exactly. Returns an empty slice if none match.
	FindProductsByCategory(ctx context.Context, category string) ([]Product, error)

	// FindProductByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product with that id is persisted.
	FindProductByID(ctx context.Context, id int64) (*Product, error)

	// StoreProducts persists each product that is not already present.
	// An existing product is never overwritten, even when the incoming copy
	// differs (insert-if-absent).
	StoreProducts(ctx context.Context, products []Product) error
}

// CartStore is the cart slice of the local store.
type CartStore interface {
	// CartItems returns all cart lines with their full product records.
	CartItems(ctx context.Context) ([]CartItem, error)

	// AddCartItem increments the existing line for the product or inserts a
	// new one, persisting the product itself first via the insert-if-absent
	// rule. Returns the resulting absolute quantity of the line.
	AddCartItem(ctx context.Context, product Product, quantity int64) (int64, error)

	// SetCartQuantity sets the absolute quantity of the product's line.
	// A missing line is a no-op. Quantity policy (removal at zero) belongs
	// to the caller, not to this layer.
	SetCartQuantity(ctx context.Context, productID, quantity int64) error

	// RemoveCartItem deletes the line for the product, if any.
	RemoveCartItem(ctx context.Context, productID int64) error

	// ClearCart deletes every cart line.
	ClearCart(ctx context.Context) error
}

// FavoriteStore is the favorites slice of the local store. Favorites have
// set semantics keyed by product id.
type FavoriteStore interface {
	// Favorites returns the favorite product ids.
	Favorites(ctx context.Context) ([]int64, error)

	// AddFavorite marks the product as favorite. No-op if already marked.
	AddFavorite(ctx context.Context, productID int64) error

	// RemoveFavorite unmarks the product, if marked.
	RemoveFavorite(ctx context.Context, productID int64) error

	// ClearFavorites empties the set.
	ClearFavorites(ctx context.Context) error
}

// Store is the full local persistence contract. Both backends implement it;
// callers never branch on which one is behind the interface.
type Store interface {
	ProductStore
	CartStore
	FavoriteStore

	// Init ensures the backing structures (tables or blob keys) exist.
	// Idempotent; safe to call repeatedly.
	Init(ctx context.Context) error
}
