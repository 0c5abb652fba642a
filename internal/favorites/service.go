// Package favorites implements the favorite-marks mutation layer on top of
// the local store.
package favorites

import (
	"context"
	"fmt"
	"slices"

	"github.com/abgdnv/storefront/internal/store"
)

// Mark is the normalized result of a favorites mutation.
type Mark struct {
	ProductID int64 `json:"productId"`
	Favorite  bool  `json:"favorite"`
}

// FavoriteService defines the favorites operations offered to callers.
type FavoriteService interface {
	// List returns the favorite product ids.
	List(ctx context.Context) ([]int64, error)

	// Toggle flips the product's membership in the favorites set and
	// returns the new state. The check and the write are separate steps;
	// two concurrent toggles of the same id can interleave.
	Toggle(ctx context.Context, productID int64) (*Mark, error)

	// Add marks the product as favorite. No-op if already marked.
	Add(ctx context.Context, productID int64) (*Mark, error)

	// Remove unmarks the product.
	Remove(ctx context.Context, productID int64) (*Mark, error)

	// Clear empties the favorites set.
	Clear(ctx context.Context) error
}

// Service implements FavoriteService over a FavoriteStore.
type Service struct {
	store store.FavoriteStore
}

// NewService creates the favorites service.
func NewService(s store.FavoriteStore) *Service {
	return &Service{store: s}
}

// List returns the favorite product ids.
func (s *Service) List(ctx context.Context) ([]int64, error) {
	ids, err := s.store.Favorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}
	return ids, nil
}

// Toggle reads the current membership and issues exactly one add or remove.
func (s *Service) Toggle(ctx context.Context, productID int64) (*Mark, error) {
	ids, err := s.store.Favorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites for toggle of %d: %w", productID, err)
	}
	if slices.Contains(ids, productID) {
		return s.Remove(ctx, productID)
	}
	return s.Add(ctx, productID)
}

// Add marks the product as favorite.
func (s *Service) Add(ctx context.Context, productID int64) (*Mark, error) {
	if err := s.store.AddFavorite(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to add favorite %d: %w", productID, err)
	}
	return &Mark{ProductID: productID, Favorite: true}, nil
}

// Remove unmarks the product.
func (s *Service) Remove(ctx context.Context, productID int64) (*Mark, error) {
	if err := s.store.RemoveFavorite(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to remove favorite %d: %w", productID, err)
	}
	return &Mark{ProductID: productID, Favorite: false}, nil
}

// Clear empties the favorites set.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.ClearFavorites(ctx); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	return nil
}
