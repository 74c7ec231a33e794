package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			price_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			price_cup DOUBLE PRECISION NOT NULL DEFAULT 0,
			original_price_usd DOUBLE PRECISION,
			original_price_cup DOUBLE PRECISION,
			image TEXT NOT NULL DEFAULT '',
			images TEXT[] NOT NULL DEFAULT '{}',
			category TEXT NOT NULL DEFAULT '',
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			is_new BOOLEAN NOT NULL DEFAULT FALSE,
			is_sale BOOLEAN NOT NULL DEFAULT FALSE,
			stock INT,
			is_available BOOLEAN
		);

		CREATE TABLE IF NOT EXISTS product_variations (
			id BIGINT PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			name TEXT NOT NULL,
			attributes JSONB NOT NULL DEFAULT '{}',
			stock INT NOT NULL DEFAULT 0,
			effective_sale_price_usd DOUBLE PRECISION,
			effective_sale_price_cup DOUBLE PRECISION,
			is_available BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			total_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_cup DOUBLE PRECISION NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			status TEXT NOT NULL DEFAULT 'placed',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id),
			product_id BIGINT NOT NULL,
			variation_id BIGINT,
			name TEXT NOT NULL,
			price_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			price_cup DOUBLE PRECISION NOT NULL DEFAULT 0,
			quantity INT NOT NULL DEFAULT 1
		);
	`)
	return err
}
