package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/repository"
)

type ingestRepository struct {
	db *DB
}

func NewIngestRepository(db *DB) repository.IngestRepository {
	return &ingestRepository{db: db}
}

// execEach prepares query once inside a transaction and runs it for every row.
func execEach[T any](ctx context.Context, db *DB, query string, rows []T, args func(T) []interface{}) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	written := 0
	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (r *ingestRepository) UpsertInventory(ctx context.Context, accountID string, items []domain.InventoryItem) (int, error) {
	query := `
		INSERT INTO inventory_items (
			id, account_id, item_name, category, subcategory, unit,
			current_stock, avg_daily_usage, reorder_point, lead_time_days,
			supplier, price_per_unit_usd, waste_pct_historical,
			purchase_date, estimated_expiration_date, storage, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		ON CONFLICT (account_id, item_name)
		DO UPDATE SET
			category = EXCLUDED.category,
			subcategory = EXCLUDED.subcategory,
			unit = EXCLUDED.unit,
			current_stock = EXCLUDED.current_stock,
			avg_daily_usage = EXCLUDED.avg_daily_usage,
			reorder_point = EXCLUDED.reorder_point,
			lead_time_days = EXCLUDED.lead_time_days,
			supplier = EXCLUDED.supplier,
			price_per_unit_usd = EXCLUDED.price_per_unit_usd,
			waste_pct_historical = EXCLUDED.waste_pct_historical,
			purchase_date = EXCLUDED.purchase_date,
			estimated_expiration_date = EXCLUDED.estimated_expiration_date,
			storage = EXCLUDED.storage,
			updated_at = NOW()
	`
	n, err := execEach(ctx, r.db, query, items, func(it domain.InventoryItem) []interface{} {
		return []interface{}{
			it.ID, accountID, it.ItemName, it.Category, it.Subcategory, it.Unit,
			it.CurrentStock, it.AvgDailyUsage, it.ReorderPoint, it.LeadTimeDays,
			it.Supplier, it.PricePerUnitUSD, it.WastePctHistorical,
			it.PurchaseDate, it.EstimatedExpirationDate, it.Storage,
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert inventory: %w", err)
	}
	return n, nil
}

func (r *ingestRepository) UpsertSales(ctx context.Context, accountID string, records []domain.SalesRecord) (int, error) {
	query := `
		INSERT INTO sales_daily (
			account_id, sales_date, menu_item_id, menu_item_name, recipe_id,
			units_sold, unit_price_usd, revenue_usd, day_of_week, is_promo_day
		) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (account_id, sales_date, menu_item_id)
		DO UPDATE SET
			menu_item_name = EXCLUDED.menu_item_name,
			recipe_id = EXCLUDED.recipe_id,
			units_sold = EXCLUDED.units_sold,
			unit_price_usd = EXCLUDED.unit_price_usd,
			revenue_usd = EXCLUDED.revenue_usd,
			day_of_week = EXCLUDED.day_of_week,
			is_promo_day = EXCLUDED.is_promo_day,
			updated_at = NOW()
	`
	n, err := execEach(ctx, r.db, query, records, func(s domain.SalesRecord) []interface{} {
		return []interface{}{
			accountID, s.Date, s.MenuItemID, s.MenuItemName, s.RecipeID,
			s.UnitsSold, s.UnitPriceUSD, s.RevenueUSD, s.DayOfWeek, s.IsPromoDay,
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert sales: %w", err)
	}
	return n, nil
}

func (r *ingestRepository) UpsertRecipes(ctx context.Context, accountID string, recipes []domain.Recipe) (int, error) {
	query := `
		INSERT INTO recipes (account_id, recipe_id, name, ingredients)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (account_id, recipe_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			ingredients = EXCLUDED.ingredients,
			updated_at = NOW()
	`
	n, err := execEach(ctx, r.db, query, recipes, func(rc domain.Recipe) []interface{} {
		return []interface{}{accountID, rc.RecipeID, rc.Name, rc.Ingredients}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert recipes: %w", err)
	}
	return n, nil
}

func (r *ingestRepository) UpsertMenuCatalog(ctx context.Context, accountID string, entries []domain.MenuCatalogEntry) (int, error) {
	query := `
		INSERT INTO menu_catalog (account_id, menu_item_id, name, recipe_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, menu_item_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			recipe_id = EXCLUDED.recipe_id,
			updated_at = NOW()
	`
	n, err := execEach(ctx, r.db, query, entries, func(e domain.MenuCatalogEntry) []interface{} {
		return []interface{}{accountID, e.MenuItemID, e.Name, e.RecipeID}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert menu catalog: %w", err)
	}
	return n, nil
}

func (r *ingestRepository) UpsertUnitConversions(ctx context.Context, accountID string, conversions []domain.UnitConversion) (int, error) {
	query := `
		INSERT INTO unit_conversions (account_id, item_name, from_unit, to_unit, multiplier)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, item_name, from_unit, to_unit)
		DO UPDATE SET
			multiplier = EXCLUDED.multiplier,
			updated_at = NOW()
	`
	n, err := execEach(ctx, r.db, query, conversions, func(c domain.UnitConversion) []interface{} {
		return []interface{}{accountID, c.ItemName, c.FromUnit, c.ToUnit, c.Multiplier}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert unit conversions: %w", err)
	}
	return n, nil
}

func (r *ingestRepository) UpsertForecasts(ctx context.Context, accountID string, forecasts []domain.ForecastEntry) (int, error) {
	query := `
		INSERT INTO forecasts (account_id, forecast_date, menu_item_id, predicted_units, model)
		VALUES ($1, $2::date, $3, $4, $5)
		ON CONFLICT (account_id, forecast_date, menu_item_id)
		DO UPDATE SET
			predicted_units = EXCLUDED.predicted_units,
			model = EXCLUDED.model,
			updated_at = NOW()
	`
	n, err := execEach(ctx, r.db, query, forecasts, func(f domain.ForecastEntry) []interface{} {
		return []interface{}{accountID, f.Date, f.MenuItemID, f.PredictedUnits, f.Model}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert forecasts: %w", err)
	}
	return n, nil
}
