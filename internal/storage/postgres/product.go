package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/go-faster/errors"

	"github.com/xenking/voicecart/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, category, price, color, description, sizes
	FROM products ORDER BY position`

	getProductByNameSQL = `SELECT id, name, category, price, color, description, sizes
	FROM products WHERE name = $1`

	upsertProductSQL = `INSERT INTO products (id, name, category, price, color, description, sizes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		category = EXCLUDED.category,
		price = EXCLUDED.price,
		color = EXCLUDED.color,
		description = EXCLUDED.description,
		sizes = EXCLUDED.sizes`
)

var _ product.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements product.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns the full catalog in insertion order.
func (r *CatalogRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

// GetByName resolves a product by exact name match.
func (r *CatalogRepository) GetByName(ctx context.Context, name string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByNameSQL, name)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", name)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Wrapf(err, "get product %q", name)
		}
		return nil, &product.NotFoundError{Name: name}
	}
	p, err := scanProduct(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or replaces a product. Used by the ingest tool.
func (r *CatalogRepository) Upsert(ctx context.Context, p product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, string(p.Category), p.Price, p.Color, p.Description, p.Attributes.Sizes,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert product %q", p.ID)
	}
	return nil
}

func scanProduct(rows pgx.Rows) (product.Product, error) {
	var (
		p        product.Product
		category string
		price    decimal.Decimal
		sizes    []string
	)
	if err := rows.Scan(&p.ID, &p.Name, &category, &price, &p.Color, &p.Description, &sizes); err != nil {
		return product.Product{}, errors.Wrap(err, "scan product")
	}
	p.Category = product.Category(category)
	p.Price = price
	p.Attributes.Sizes = sizes
	return p, nil
}
