// Package rest exposes the storefront core over HTTP. It is the process's
// presentation boundary: every response is a fresh value, and core errors
// are mapped to status codes here and nowhere else.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/favorites"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	catalog   catalog.ProductCatalog
	cart      cart.CartService
	favorites favorites.FavoriteService
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates the storefront HTTP handler over the three core services.
func NewHandler(c catalog.ProductCatalog, crt cart.CartService, fav favorites.FavoriteService, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:   c,
		cart:      crt,
		favorites: fav,
		validate:  validator.New(),
		logger:    logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the storefront service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/search", h.SearchProducts)
			r.Get("/{id}", h.ProductByID)
		})
		r.Get("/categories", h.Categories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.CartItems)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddToCart)
			r.Put("/items/{id}", h.UpdateQuantity)
			r.Delete("/items/{id}", h.RemoveFromCart)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.Favorites)
			r.Delete("/", h.ClearFavorites)
			r.Put("/{id}", h.AddFavorite)
			r.Delete("/{id}", h.RemoveFavorite)
			r.Post("/{id}/toggle", h.ToggleFavorite)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// addToCartRequest carries the add-to-cart payload. The full product record
// rides along so the store can commit it before the cart line.
type addToCartRequest struct {
	Product  store.Product `json:"product"`
	Quantity int64         `json:"quantity" validate:"required,min=1"`
}

// updateQuantityRequest carries an absolute quantity. Zero or below means
// "remove the line".
type updateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// ListProducts returns the catalog, optionally narrowed to ?category=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	category := r.URL.Query().Get("category")
	if category == "" {
		category = catalog.CategoryAll
	}

	mLogger.DebugContext(r.Context(), "Received request to list products", "category", category)
	list, err := h.catalog.ProductsByCategory(r.Context(), category)
	if err != nil {
		h.respondCatalogError(w, r, mLogger, err, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully listed products", "category", category, "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// ProductByID returns a single product through the read-through cache.
func (h *Handler) ProductByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.catalog.ProductByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// SearchProducts runs a remote search; a blank query returns the whole catalog.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query := r.URL.Query().Get("q")

	mLogger.DebugContext(r.Context(), "Received request to search products", "query", query)
	list, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		h.respondCatalogError(w, r, mLogger, err, "Failed to search products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Categories returns the remote category list.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.respondCatalogError(w, r, mLogger, err, "Failed to fetch categories")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, categories)
}

// CartItems returns the current cart contents.
func (h *Handler) CartItems(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	items, err := h.cart.Items(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error fetching cart items", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch cart items")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, items)
}

// AddToCart adds a quantity of a product to the cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateRequest(w, r, mLogger, req) {
		return
	}
	if req.Product.ID <= 0 {
		web.RespondError(w, mLogger, http.StatusBadRequest, "product.id must be positive")
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to add to cart", "productID", req.Product.ID, "quantity", req.Quantity)
	line, err := h.cart.Add(r.Context(), req.Product, req.Quantity)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error adding to cart", "productID", req.Product.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add product to cart")
		return
	}
	mLogger.InfoContext(r.Context(), "Product added to cart", "productID", line.ProductID, "quantity", line.Quantity)
	web.RespondJSON(w, mLogger, http.StatusCreated, line)
}

// UpdateQuantity sets the absolute quantity of a cart line; zero or below
// removes the line.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update cart quantity", "productID", id, "quantity", req.Quantity)
	line, err := h.cart.UpdateQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error updating cart quantity", "productID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update quantity for product %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Cart quantity updated", "productID", line.ProductID, "quantity", line.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, line)
}

// RemoveFromCart deletes a cart line.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.cart.Remove(r.Context(), id); err != nil {
		mLogger.ErrorContext(r.Context(), "Error removing from cart", "productID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to remove product %d from cart", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product removed from cart", "productID", id)
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := h.cart.Clear(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error clearing cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	mLogger.InfoContext(r.Context(), "Cart cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Favorites returns the favorite product ids.
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ids, err := h.favorites.List(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error fetching favorites", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch favorites")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, ids)
}

// ToggleFavorite flips the favorite state of a product.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mark, err := h.favorites.Toggle(r.Context(), id)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error toggling favorite", "productID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to toggle favorite %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Favorite toggled", "productID", mark.ProductID, "favorite", mark.Favorite)
	web.RespondJSON(w, mLogger, http.StatusOK, mark)
}

// AddFavorite marks a product as favorite.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mark, err := h.favorites.Add(r.Context(), id)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error adding favorite", "productID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to add favorite %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, mark)
}

// RemoveFavorite unmarks a product.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mark, err := h.favorites.Remove(r.Context(), id)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error removing favorite", "productID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to remove favorite %d", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, mark)
}

// ClearFavorites empties the favorites set.
func (h *Handler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := h.favorites.Clear(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error clearing favorites", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to clear favorites")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondCatalogError maps read-path failures: not-found to 404, remote
// fetch failures to 502 (except a remote 404, which stays a 404), anything
// else to 500.
func (h *Handler) respondCatalogError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, message string) {
	if errors.Is(err, apperrors.ErrProductNotFound) {
		mLogger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
		return
	}
	var fetchErr *apperrors.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Status == http.StatusNotFound {
			mLogger.WarnContext(r.Context(), "Product not found upstream", "error", err)
			web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Upstream catalog failure", "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Catalog service is unavailable")
		return
	}
	mLogger.ErrorContext(r.Context(), "Catalog operation failed", "error", err)
	web.RespondError(w, mLogger, http.StatusInternalServerError, message)
}

// validateRequest runs struct validation and writes the field error map on
// failure. Returns true when the payload is valid.
func (h *Handler) validateRequest(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, payload any) bool {
	err := h.validate.Struct(payload)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return false
	}
	mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
	return false
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
