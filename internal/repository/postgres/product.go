package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, price_usd, price_cup, original_price_usd, original_price_cup,
	image, images, category, rating, description, is_new, is_sale, stock, is_available`

func scanProduct(row interface{ Scan(...any) error }) (entity.Product, error) {
	var p entity.Product
	var images pq.StringArray
	err := row.Scan(&p.ID, &p.Name, &p.PriceUSD, &p.PriceCUP, &p.OriginalPriceUSD, &p.OriginalPriceCUP,
		&p.Image, &images, &p.Category, &p.Rating, &p.Description, &p.IsNew, &p.IsSale, &p.Stock, &p.IsAvailable)
	if err != nil {
		return entity.Product{}, err
	}
	p.Images = []string(images)
	return p, nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	byID := make(map[int64]int)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		byID[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	variations, err := r.loadVariations(ctx, nil)
	if err != nil {
		return nil, err
	}
	for productID, vs := range variations {
		if i, ok := byID[productID]; ok {
			products[i].Variations = vs
			products[i].HasVariations = true
		}
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product %d: %w", id, err)
	}

	variations, err := r.loadVariations(ctx, &id)
	if err != nil {
		return nil, err
	}
	if vs := variations[id]; len(vs) > 0 {
		p.Variations = vs
		p.HasVariations = true
	}
	return &p, nil
}

// loadVariations returns variations grouped by product id, for one
// product when productID is set or for all products when nil.
func (r *productRepository) loadVariations(ctx context.Context, productID *int64) (map[int64][]entity.ProductVariation, error) {
	query := `SELECT product_id, id, name, attributes, stock,
		effective_sale_price_usd, effective_sale_price_cup, is_available
		FROM product_variations`
	var args []any
	if productID != nil {
		query += " WHERE product_id = $1"
		args = append(args, *productID)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query variations: %w", err)
	}
	defer rows.Close()

	grouped := make(map[int64][]entity.ProductVariation)
	for rows.Next() {
		var pid int64
		var v entity.ProductVariation
		var attrs []byte
		if err := rows.Scan(&pid, &v.ID, &v.Name, &attrs, &v.Stock,
			&v.EffectiveSalePriceUSD, &v.EffectiveSalePriceCUP, &v.IsAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan variation: %w", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &v.Attributes); err != nil {
				return nil, fmt.Errorf("failed to decode variation attributes: %w", err)
			}
		}
		grouped[pid] = append(grouped[pid], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate variations: %w", err)
	}
	return grouped, nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for _, p := range products {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO products (id, name, price_usd, price_cup, original_price_usd, original_price_cup,
				image, images, category, rating, description, is_new, is_sale, stock, is_available)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			p.ID, p.Name, p.PriceUSD, p.PriceCUP, p.OriginalPriceUSD, p.OriginalPriceCUP,
			p.Image, pq.Array(p.Images), p.Category, p.Rating, p.Description, p.IsNew, p.IsSale, p.Stock, p.IsAvailable,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %d: %w", p.ID, err)
		}

		for _, v := range p.Variations {
			attrs, err := json.Marshal(v.Attributes)
			if err != nil {
				return fmt.Errorf("failed to encode attributes for variation %d: %w", v.ID, err)
			}
			_, err = r.db.ExecContext(ctx,
				`INSERT INTO product_variations (id, product_id, name, attributes, stock,
					effective_sale_price_usd, effective_sale_price_cup, is_available)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				v.ID, p.ID, v.Name, attrs, v.Stock, v.EffectiveSalePriceUSD, v.EffectiveSalePriceCUP, v.IsAvailable,
			)
			if err != nil {
				return fmt.Errorf("failed to seed variation %d: %w", v.ID, err)
			}
		}
	}
	return nil
}

func (r *productRepository) ReduceStock(ctx context.Context, productID int64, variationID *int64, quantity int) error {
	if variationID != nil {
		_, err := r.db.ExecContext(ctx,
			"UPDATE product_variations SET stock = GREATEST(stock - $1, 0) WHERE id = $2 AND product_id = $3",
			quantity, *variationID, productID,
		)
		if err != nil {
			return fmt.Errorf("failed to reduce variation stock: %w", err)
		}
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE products SET stock = GREATEST(stock - $1, 0) WHERE id = $2 AND stock IS NOT NULL",
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to reduce product stock: %w", err)
	}
	return nil
}
