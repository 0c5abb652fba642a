// Package cart implements the cart mutation layer on top of the local store.
package cart

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront/internal/store"
)

// Line is the normalized result of a cart mutation: the product the mutation
// touched and the absolute quantity it ended up with.
type Line struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// CartService defines the cart operations offered to callers.
type CartService interface {
	// Items returns the current cart lines.
	Items(ctx context.Context) ([]store.CartItem, error)

	// Add increments the product's line by quantity, creating it when
	// missing. The product record is committed to the store first under the
	// insert-if-absent rule. quantity must be at least 1.
	Add(ctx context.Context, product store.Product, quantity int64) (*Line, error)

	// UpdateQuantity sets the line's absolute quantity. A quantity of zero
	// or below removes the line entirely.
	UpdateQuantity(ctx context.Context, productID, quantity int64) (*Line, error)

	// Remove deletes the product's line, if any.
	Remove(ctx context.Context, productID int64) error

	// Clear empties the cart.
	Clear(ctx context.Context) error
}

// Service implements CartService over a CartStore.
type Service struct {
	store store.CartStore
}

// NewService creates the cart service.
func NewService(s store.CartStore) *Service {
	return &Service{store: s}
}

// Items returns the current cart lines.
func (s *Service) Items(ctx context.Context) ([]store.CartItem, error) {
	items, err := s.store.CartItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	return items, nil
}

// Add increments or creates the product's line and returns the resulting
// absolute quantity.
func (s *Service) Add(ctx context.Context, product store.Product, quantity int64) (*Line, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	newQuantity, err := s.store.AddCartItem(ctx, product, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add product %d to cart: %w", product.ID, err)
	}
	return &Line{ProductID: product.ID, Quantity: newQuantity}, nil
}

// UpdateQuantity sets the absolute quantity, removing the line when the
// requested quantity is zero or negative.
func (s *Service) UpdateQuantity(ctx context.Context, productID, quantity int64) (*Line, error) {
	if quantity <= 0 {
		if err := s.store.RemoveCartItem(ctx, productID); err != nil {
			return nil, fmt.Errorf("failed to remove product %d from cart: %w", productID, err)
		}
		return &Line{ProductID: productID, Quantity: 0}, nil
	}
	if err := s.store.SetCartQuantity(ctx, productID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update quantity for product %d: %w", productID, err)
	}
	return &Line{ProductID: productID, Quantity: quantity}, nil
}

// Remove deletes the product's line.
func (s *Service) Remove(ctx context.Context, productID int64) error {
	if err := s.store.RemoveCartItem(ctx, productID); err != nil {
		return fmt.Errorf("failed to remove product %d from cart: %w", productID, err)
	}
	return nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.ClearCart(ctx); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
