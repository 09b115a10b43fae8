package repository

import (
	"context"
	"fmt"
)

// schema creates the catalog tables and indexes. Every statement is idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS products (
		id            BIGSERIAL PRIMARY KEY,
		doc           JSONB NOT NULL,
		search_vector TSVECTOR GENERATED ALWAYS AS (
			to_tsvector('simple',
				coalesce(doc->>'search_tags', '') || ' ' ||
				coalesce(doc->>'item_name', '') || ' ' ||
				coalesce(doc->>'brand_name', ''))
		) STORED,
		embedding     VECTOR,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS text_search_index ON products USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS products_category_idx ON products ((doc->>'category'))`,
	`CREATE INDEX IF NOT EXISTS products_weight_idx ON products (((doc->>'weight_kg')::float8)) WHERE doc ? 'weight_kg'`,
	`CREATE INDEX IF NOT EXISTS products_volume_idx ON products (((doc->>'volume_ml')::float8)) WHERE doc ? 'volume_ml'`,
	`CREATE TABLE IF NOT EXISTS search_logs (
		search_id            UUID PRIMARY KEY,
		query                TEXT NOT NULL,
		filter               JSONB,
		result_count         INTEGER NOT NULL,
		returned_product_ids TEXT[],
		response_time_ms     INTEGER NOT NULL,
		clicked_product_id   TEXT,
		action               TEXT,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the schema if it does not exist yet
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}
