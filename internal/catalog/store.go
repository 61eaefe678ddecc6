package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

const productColumns = `id, code, barcode, name, retail_price, wholesale_price, stock, min_stock, category, image_url`

// Store runs product queries against Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// GetByID loads a single product.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// GetByBarcode resolves the product for a scanned barcode.
func (s *Store) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)
	return scanProduct(row)
}

// Search returns products matching the query by code, barcode or name,
// paginated, together with the total match count.
func (s *Store) Search(ctx context.Context, q string, limit, offset int) ([]Product, int, error) {
	pattern := "%" + q + "%"
	var total int
	if err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM products
		 WHERE code ILIKE $1 OR barcode ILIKE $1 OR name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE code ILIKE $1 OR barcode ILIKE $1 OR name ILIKE $1
		 ORDER BY name
		 LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// DecrementStock reduces availability after a completed sale and returns the
// remaining stock together with the product's minimum-stock threshold. The
// floor is zero; sales never drive stock negative.
func (s *Store) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) (remaining, minStock int, err error) {
	err = tx.QueryRow(ctx,
		`UPDATE products SET stock = GREATEST(stock - $2, 0)
		 WHERE id = $1
		 RETURNING stock, min_stock`,
		id, qty).Scan(&remaining, &minStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	return remaining, minStock, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Barcode, &p.Name, &p.RetailPrice,
		&p.WholesalePrice, &p.Stock, &p.MinStock, &p.Category, &p.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}
