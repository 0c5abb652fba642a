package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, title, description, price, discount_percentage, rating, stock, brand, category, thumbnail, images`

// PgStore implements Store on PostgreSQL using a pgx connection pool.
// Products are individual rows; images ride along as a JSON text column.
type PgStore struct {
	db  *pgxpool.Pool
	url string
}

// NewPgStore creates a PgStore over the given pool. The url is kept for
// Init, which applies the embedded schema migrations.
func NewPgStore(db *pgxpool.Pool, url string) *PgStore {
	return &PgStore{db: db, url: url}
}

// Init ensures the tables exist by applying the embedded migrations.
// Safe to call repeatedly.
func (s *PgStore) Init(_ context.Context) error {
	if err := RunMigrations(s.url); err != nil {
		return apperrors.NewStorage("init", err)
	}
	return nil
}

// FindAllProducts returns every persisted product.
func (s *PgStore) FindAllProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewStorage("products.find_all", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, apperrors.NewStorage("products.find_all", err)
	}
	return products, nil
}

// FindProductsByCategory returns the persisted products with an exact
// category match.
func (s *PgStore) FindProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE category = $1 ORDER BY id`, category)
	if err != nil {
		return nil, apperrors.NewStorage("products.find_by_category", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, apperrors.NewStorage("products.find_by_category", err)
	}
	return products, nil
}

// FindProductByID retrieves a product by id.
// Returns ErrProductNotFound if no row exists.
func (s *PgStore) FindProductByID(ctx context.Context, id int64) (*Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.NewStorage("products.find_by_id", err)
	}
	return p, nil
}

// StoreProducts inserts each product that has no row yet. Existing rows are
// left untouched (insert-if-absent).
func (s *PgStore) StoreProducts(ctx context.Context, products []Product) error {
	for _, p := range products {
		if err := s.insertProductIfAbsent(ctx, p); err != nil {
			return apperrors.NewStorage("products.store", err)
		}
	}
	return nil
}

func (s *PgStore) insertProductIfAbsent(ctx context.Context, p Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("encode images for product %d: %w", p.ID, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Title, p.Description, p.Price, p.DiscountPercentage,
		p.Rating, p.Stock, p.Brand, p.Category, p.Thumbnail, string(images),
	)
	return err
}

// CartItems returns all cart lines joined with their product rows.
func (s *PgStore) CartItems(ctx context.Context) ([]CartItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.quantity, p.id, p.title, p.description, p.price, p.discount_percentage,
		       p.rating, p.stock, p.brand, p.category, p.thumbnail, p.images
		FROM cart c
		JOIN products p ON p.id = c.product_id
		ORDER BY c.id`)
	if err != nil {
		return nil, apperrors.NewStorage("cart.items", err)
	}
	defer rows.Close()

	items := make([]CartItem, 0, 8)
	for rows.Next() {
		var (
			item   CartItem
			images string
		)
		p := &item.Product
		if err := rows.Scan(&item.Quantity, &p.ID, &p.Title, &p.Description, &p.Price,
			&p.DiscountPercentage, &p.Rating, &p.Stock, &p.Brand, &p.Category,
			&p.Thumbnail, &images); err != nil {
			return nil, apperrors.NewStorage("cart.items", err)
		}
		if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
			return nil, apperrors.NewStorage("cart.items", fmt.Errorf("decode images for product %d: %w", p.ID, err))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorage("cart.items", err)
	}
	return items, nil
}

// AddCartItem increments the line for the product or inserts a new one.
// The product row is committed first so the cart's foreign key always
// resolves. Returns the resulting absolute quantity.
func (s *PgStore) AddCartItem(ctx context.Context, product Product, quantity int64) (int64, error) {
	if err := s.StoreProducts(ctx, []Product{product}); err != nil {
		return 0, err
	}

	var (
		lineID      int64
		currentQty  int64
		newQuantity int64
	)
	err := s.db.QueryRow(ctx, `SELECT id, quantity FROM cart WHERE product_id = $1`, product.ID).
		Scan(&lineID, &currentQty)
	switch {
	case err == nil:
		newQuantity = currentQty + quantity
		if _, err := s.db.Exec(ctx, `UPDATE cart SET quantity = $1 WHERE id = $2`, newQuantity, lineID); err != nil {
			return 0, apperrors.NewStorage("cart.add", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		newQuantity = quantity
		if _, err := s.db.Exec(ctx, `INSERT INTO cart (product_id, quantity) VALUES ($1, $2)`, product.ID, quantity); err != nil {
			return 0, apperrors.NewStorage("cart.add", err)
		}
	default:
		return 0, apperrors.NewStorage("cart.add", err)
	}
	return newQuantity, nil
}

// SetCartQuantity sets the absolute quantity for the product's line.
// A missing line leaves the cart unchanged.
func (s *PgStore) SetCartQuantity(ctx context.Context, productID, quantity int64) error {
	if _, err := s.db.Exec(ctx, `UPDATE cart SET quantity = $1 WHERE product_id = $2`, quantity, productID); err != nil {
		return apperrors.NewStorage("cart.set_quantity", err)
	}
	return nil
}

// RemoveCartItem deletes the line for the product, if any.
func (s *PgStore) RemoveCartItem(ctx context.Context, productID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cart WHERE product_id = $1`, productID); err != nil {
		return apperrors.NewStorage("cart.remove", err)
	}
	return nil
}

// ClearCart deletes every cart line.
func (s *PgStore) ClearCart(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cart`); err != nil {
		return apperrors.NewStorage("cart.clear", err)
	}
	return nil
}

// Favorites returns the favorite product ids in ascending order.
func (s *PgStore) Favorites(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT product_id FROM favorites ORDER BY product_id`)
	if err != nil {
		return nil, apperrors.NewStorage("favorites.list", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 8)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewStorage("favorites.list", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorage("favorites.list", err)
	}
	return ids, nil
}

// AddFavorite marks the product as favorite. No-op when already marked.
func (s *PgStore) AddFavorite(ctx context.Context, productID int64) error {
	if _, err := s.db.Exec(ctx, `INSERT INTO favorites (product_id) VALUES ($1) ON CONFLICT DO NOTHING`, productID); err != nil {
		return apperrors.NewStorage("favorites.add", err)
	}
	return nil
}

// RemoveFavorite unmarks the product, if marked.
func (s *PgStore) RemoveFavorite(ctx context.Context, productID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM favorites WHERE product_id = $1`, productID); err != nil {
		return apperrors.NewStorage("favorites.remove", err)
	}
	return nil
}

// ClearFavorites empties the favorites set.
func (s *PgStore) ClearFavorites(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM favorites`); err != nil {
		return apperrors.NewStorage("favorites.clear", err)
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0, 16)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p      Product
		images string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.DiscountPercentage,
		&p.Rating, &p.Stock, &p.Brand, &p.Category, &p.Thumbnail, &images); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return nil, fmt.Errorf("decode images for product %d: %w", p.ID, err)
	}
	return &p, nil
}
