package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/repository"
)

type planningRepository struct {
	db *DB
}

func NewPlanningRepository(db *DB) repository.PlanningRepository {
	return &planningRepository{db: db}
}

func (r *planningRepository) ListInventory(ctx context.Context, accountID string) ([]domain.InventoryItem, error) {
	query := `
		SELECT
			id, account_id, item_name, category, subcategory, unit,
			current_stock, avg_daily_usage, reorder_point, lead_time_days,
			supplier, price_per_unit_usd, waste_pct_historical,
			purchase_date, estimated_expiration_date, storage, created_at
		FROM inventory_items
		WHERE account_id = $1
		ORDER BY item_name
	`

	items := []domain.InventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query, accountID); err != nil {
		return nil, fmt.Errorf("error listing inventory: %w", err)
	}
	return items, nil
}

func (r *planningRepository) ListForecasts(ctx context.Context, accountID, date string) ([]domain.ForecastEntry, error) {
	query := `
		SELECT
			account_id,
			to_char(forecast_date, 'YYYY-MM-DD') AS forecast_date,
			menu_item_id,
			predicted_units,
			model
		FROM forecasts
		WHERE account_id = $1 AND forecast_date = $2::date
		ORDER BY menu_item_id
	`

	forecasts := []domain.ForecastEntry{}
	if err := r.db.SelectContext(ctx, &forecasts, query, accountID, date); err != nil {
		return nil, fmt.Errorf("error listing forecasts: %w", err)
	}
	return forecasts, nil
}

func (r *planningRepository) ListMenuCatalog(ctx context.Context, accountID string) ([]domain.MenuCatalogEntry, error) {
	query := `
		SELECT account_id, menu_item_id, name, recipe_id
		FROM menu_catalog
		WHERE account_id = $1
		ORDER BY menu_item_id
	`

	entries := []domain.MenuCatalogEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, accountID); err != nil {
		return nil, fmt.Errorf("error listing menu catalog: %w", err)
	}
	return entries, nil
}

func (r *planningRepository) ListRecipes(ctx context.Context, accountID string) ([]domain.Recipe, error) {
	query := `
		SELECT account_id, recipe_id, name, ingredients
		FROM recipes
		WHERE account_id = $1
		ORDER BY recipe_id
	`

	recipes := []domain.Recipe{}
	if err := r.db.SelectContext(ctx, &recipes, query, accountID); err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}
	return recipes, nil
}

func (r *planningRepository) GetRecipe(ctx context.Context, accountID, recipeID string) (*domain.Recipe, error) {
	query := `
		SELECT account_id, recipe_id, name, ingredients
		FROM recipes
		WHERE account_id = $1 AND recipe_id = $2
	`

	var recipe domain.Recipe
	if err := r.db.GetContext(ctx, &recipe, query, accountID, recipeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error getting recipe %s: %w", recipeID, err)
	}
	return &recipe, nil
}

func (r *planningRepository) DatasetCounts(ctx context.Context, accountID string) (map[domain.Dataset]int, error) {
	query := `
		SELECT 'inventory' AS dataset, COUNT(*) AS count FROM inventory_items WHERE account_id = $1
		UNION ALL SELECT 'salesDaily', COUNT(*) FROM sales_daily WHERE account_id = $1
		UNION ALL SELECT 'recipes', COUNT(*) FROM recipes WHERE account_id = $1
		UNION ALL SELECT 'menuCatalog', COUNT(*) FROM menu_catalog WHERE account_id = $1
		UNION ALL SELECT 'unitConversions', COUNT(*) FROM unit_conversions WHERE account_id = $1
		UNION ALL SELECT 'forecasts', COUNT(*) FROM forecasts WHERE account_id = $1
	`

	var rows []struct {
		Dataset string `db:"dataset"`
		Count   int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, accountID); err != nil {
		return nil, fmt.Errorf("error counting datasets: %w", err)
	}

	counts := make(map[domain.Dataset]int, len(rows))
	for _, row := range rows {
		counts[domain.Dataset(row.Dataset)] = row.Count
	}
	return counts, nil
}
