package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
)

// CategoryAll is the pseudo-category meaning "the whole catalog", not a
// literal category value.
const CategoryAll = "all"

// Fetcher is the remote side of the read-through cache.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]store.Product, error)
	FetchProductsByCategory(ctx context.Context, category string) ([]store.Product, error)
	FetchProductByID(ctx context.Context, id int64) (*store.Product, error)
	FetchCategories(ctx context.Context) ([]string, error)
	SearchProducts(ctx context.Context, query string) ([]store.Product, error)
}

// ProductCatalog defines the read operations offered to callers.
type ProductCatalog interface {
	// Products returns the full catalog: local store contents when any are
	// persisted, otherwise a remote fetch whose results are stored back.
	Products(ctx context.Context) ([]store.Product, error)

	// ProductsByCategory behaves like Products for one category.
	// CategoryAll delegates to Products.
	ProductsByCategory(ctx context.Context, category string) ([]store.Product, error)

	// ProductByID returns the product from the local store when present,
	// otherwise fetches it remotely and stores it back.
	// Returns ErrProductNotFound only for ids the store does not hold and
	// the remote cannot resolve either.
	ProductByID(ctx context.Context, id int64) (*store.Product, error)

	// Search always queries the remote catalog. A blank query degrades to
	// Products instead of an empty-result search. Non-empty results are
	// stored back opportunistically.
	Search(ctx context.Context, query string) ([]store.Product, error)

	// Categories returns the remote category list. Never cached.
	Categories(ctx context.Context) ([]string, error)
}

// Service implements ProductCatalog as a read-through cache: the local store
// answers when it holds anything for the requested slice, with no freshness
// check of any kind; only an empty slice falls through to the remote. An
// initial partial load therefore short-circuits later full-catalog requests
// until the store is cleared. That staleness trade-off is deliberate.
type Service struct {
	store  store.ProductStore
	remote Fetcher
}

// NewService creates the read-through catalog service.
func NewService(s store.ProductStore, remote Fetcher) *Service {
	return &Service{store: s, remote: remote}
}

// Products returns locally persisted products, or fetches and persists the
// catalog when the store is empty.
func (s *Service) Products(ctx context.Context) ([]store.Product, error) {
	local, err := s.store.FindAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read products from local store: %w", err)
	}
	if len(local) > 0 {
		return local, nil
	}

	fetched, err := s.remote.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.StoreProducts(ctx, fetched); err != nil {
		return nil, fmt.Errorf("failed to persist fetched products: %w", err)
	}
	return fetched, nil
}

// ProductsByCategory returns locally persisted products of the category, or
// fetches and persists the category page when none are stored.
func (s *Service) ProductsByCategory(ctx context.Context, category string) ([]store.Product, error) {
	if category == CategoryAll {
		return s.Products(ctx)
	}

	local, err := s.store.FindProductsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to read category %q from local store: %w", category, err)
	}
	if len(local) > 0 {
		return local, nil
	}

	fetched, err := s.remote.FetchProductsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if err := s.store.StoreProducts(ctx, fetched); err != nil {
		return nil, fmt.Errorf("failed to persist fetched category %q: %w", category, err)
	}
	return fetched, nil
}

// ProductByID returns the locally persisted product, or fetches and persists
// it when absent.
func (s *Service) ProductByID(ctx context.Context, id int64) (*store.Product, error) {
	local, err := s.store.FindProductByID(ctx, id)
	if err == nil {
		return local, nil
	}
	if !errors.Is(err, apperrors.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to read product %d from local store: %w", id, err)
	}

	fetched, err := s.remote.FetchProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.StoreProducts(ctx, []store.Product{*fetched}); err != nil {
		return nil, fmt.Errorf("failed to persist fetched product %d: %w", id, err)
	}
	return fetched, nil
}

// Search always hits the remote catalog for fresh results, writing them back
// to the local store opportunistically. A blank query means "fetch all".
func (s *Service) Search(ctx context.Context, query string) ([]store.Product, error) {
	if strings.TrimSpace(query) == "" {
		return s.Products(ctx)
	}

	found, err := s.remote.SearchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		if err := s.store.StoreProducts(ctx, found); err != nil {
			return nil, fmt.Errorf("failed to persist search results for %q: %w", query, err)
		}
	}
	return found, nil
}

// Categories returns the remote category list.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.remote.FetchCategories(ctx)
}
