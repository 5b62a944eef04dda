package repository

import (
	"context"
	"errors"

	"github.com/themagicbeanstock/backend-go/internal/domain"
)

// ErrNotFound is returned when a single record lookup has no match.
var ErrNotFound = errors.New("record not found")

// PlanningRepository reads the per-account datasets the engine works on.
type PlanningRepository interface {
	ListInventory(ctx context.Context, accountID string) ([]domain.InventoryItem, error)
	ListForecasts(ctx context.Context, accountID, date string) ([]domain.ForecastEntry, error)
	ListMenuCatalog(ctx context.Context, accountID string) ([]domain.MenuCatalogEntry, error)
	ListRecipes(ctx context.Context, accountID string) ([]domain.Recipe, error)
	GetRecipe(ctx context.Context, accountID, recipeID string) (*domain.Recipe, error)
	DatasetCounts(ctx context.Context, accountID string) (map[domain.Dataset]int, error)
}

// IngestRepository writes uploaded datasets. Every method upserts on the
// record's natural key and returns the number of rows written.
type IngestRepository interface {
	UpsertInventory(ctx context.Context, accountID string, items []domain.InventoryItem) (int, error)
	UpsertSales(ctx context.Context, accountID string, records []domain.SalesRecord) (int, error)
	UpsertRecipes(ctx context.Context, accountID string, recipes []domain.Recipe) (int, error)
	UpsertMenuCatalog(ctx context.Context, accountID string, entries []domain.MenuCatalogEntry) (int, error)
	UpsertUnitConversions(ctx context.Context, accountID string, conversions []domain.UnitConversion) (int, error)
	UpsertForecasts(ctx context.Context, accountID string, forecasts []domain.ForecastEntry) (int, error)
}
