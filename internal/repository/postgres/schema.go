package postgres

import (
	"context"
	"fmt"
)

// schemaStatements creates every table the service reads or writes.
// Dates that come from spreadsheets as free text are kept as TEXT.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		subcategory TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		current_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
		avg_daily_usage DOUBLE PRECISION NOT NULL DEFAULT 0,
		reorder_point DOUBLE PRECISION NOT NULL DEFAULT 0,
		lead_time_days DOUBLE PRECISION NOT NULL DEFAULT 0,
		supplier TEXT NOT NULL DEFAULT '',
		price_per_unit_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
		waste_pct_historical DOUBLE PRECISION,
		purchase_date TEXT NOT NULL DEFAULT '',
		estimated_expiration_date TEXT NOT NULL DEFAULT '',
		storage TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (account_id, item_name)
	)`,
	`CREATE TABLE IF NOT EXISTS forecasts (
		account_id TEXT NOT NULL,
		forecast_date DATE NOT NULL,
		menu_item_id TEXT NOT NULL,
		predicted_units DOUBLE PRECISION NOT NULL DEFAULT 0,
		model TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (account_id, forecast_date, menu_item_id)
	)`,
	`ALTER TABLE forecasts ADD COLUMN IF NOT EXISTS model TEXT NOT NULL DEFAULT ''`,
	`CREATE TABLE IF NOT EXISTS menu_catalog (
		account_id TEXT NOT NULL,
		menu_item_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		recipe_id TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (account_id, menu_item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		account_id TEXT NOT NULL,
		recipe_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		ingredients JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (account_id, recipe_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sales_daily (
		account_id TEXT NOT NULL,
		sales_date DATE NOT NULL,
		menu_item_id TEXT NOT NULL,
		menu_item_name TEXT NOT NULL DEFAULT '',
		recipe_id TEXT NOT NULL DEFAULT '',
		units_sold DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit_price_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
		revenue_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
		day_of_week TEXT NOT NULL DEFAULT '',
		is_promo_day BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (account_id, sales_date, menu_item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS unit_conversions (
		account_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		from_unit TEXT NOT NULL,
		to_unit TEXT NOT NULL,
		multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (account_id, item_name, from_unit, to_unit)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_forecasts_account_date ON forecasts (account_id, forecast_date)`,
}

// EnsureSchema creates missing tables and indexes.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
