package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sajibhasan/gymkart/internal/domain/catalog"
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
// Variants are stored inline on the product row as JSONB.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, base_price, base_stock, category, image, variants`

// List returns the full catalog ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByIDs fetches the products for the given id set in one query. Missing
// ids simply do not appear in the result; callers detect removed products
// by absence.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products by ids")
	}
	defer rows.Close()

	return scanProducts(rows)
}

// DecrementStock applies all decrements inside one transaction. Each
// statement touches exactly one product row: either the base stock column
// or one element of the variants JSONB array.
func (r *ProductRepository) DecrementStock(ctx context.Context, decs []catalog.StockDecrement) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, d := range decs {
			var err error
			if d.VariantKey == "" {
				_, err = tx.Exec(ctx,
					`UPDATE products SET base_stock = base_stock - $2 WHERE id = $1`,
					d.ProductID, d.Quantity,
				)
			} else {
				_, err = tx.Exec(ctx, `
					UPDATE products SET variants = (
						SELECT COALESCE(jsonb_agg(
							CASE WHEN v->>'key' = $2
								THEN jsonb_set(v, '{stock}', to_jsonb(COALESCE((v->>'stock')::int, 0) - $3))
								ELSE v
							END), '[]'::jsonb)
						FROM jsonb_array_elements(variants) AS v
					) WHERE id = $1`,
					d.ProductID, d.VariantKey, d.Quantity,
				)
			}
			if err != nil {
				return errors.Wrapf(err, "decrement stock for product %s", d.ProductID)
			}
		}
		return nil
	})
}

func scanProducts(rows pgx.Rows) ([]catalog.Product, error) {
	var products []catalog.Product
	for rows.Next() {
		var (
			p            catalog.Product
			variantsJSON []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.BasePrice, &p.BaseStock, &p.Category, &p.Image, &variantsJSON); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
			return nil, errors.Wrapf(err, "unmarshal variants for product %s", p.ID)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return products, nil
}
