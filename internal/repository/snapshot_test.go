package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themagicbeanstock/backend-go/internal/domain"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.UpsertInventory(ctx, "acct", []domain.InventoryItem{
		{ItemName: "Flour", Unit: "kg", CurrentStock: 3},
		{ItemName: "Milk", Unit: "l", CurrentStock: 1},
	})
	require.NoError(t, err)
	_, err = s.UpsertForecasts(ctx, "acct", []domain.ForecastEntry{
		{Date: "2025-03-10", MenuItemID: "m1", PredictedUnits: 10},
		{Date: "2025-03-11", MenuItemID: "m1", PredictedUnits: 12},
	})
	require.NoError(t, err)
	_, err = s.UpsertMenuCatalog(ctx, "acct", []domain.MenuCatalogEntry{{MenuItemID: "m1", RecipeID: "r1"}})
	require.NoError(t, err)
	_, err = s.UpsertRecipes(ctx, "acct", []domain.Recipe{{RecipeID: "r1", Ingredients: domain.IngredientLines{{ItemName: "Flour", AmountPerServing: 0.1}}}})
	require.NoError(t, err)
	return s
}

func TestLoadPlanningSnapshot(t *testing.T) {
	s := seededStore(t)

	snap, err := LoadPlanningSnapshot(context.Background(), s, "acct", "2025-03-10")
	require.NoError(t, err)

	assert.Len(t, snap.Inventory, 2)
	require.Len(t, snap.Forecasts, 1)
	assert.Equal(t, 10.0, snap.Forecasts[0].PredictedUnits)
	assert.Len(t, snap.Menu, 1)
	assert.Len(t, snap.Recipes, 1)
}

func TestLoadPlanningSnapshot_WithoutDateSkipsForecasts(t *testing.T) {
	s := seededStore(t)

	snap, err := LoadPlanningSnapshot(context.Background(), s, "acct", "")
	require.NoError(t, err)
	assert.Nil(t, snap.Forecasts)
	assert.Len(t, snap.Inventory, 2)
}

type failingInventory struct {
	*MemoryStore
}

func (failingInventory) ListInventory(context.Context, string) ([]domain.InventoryItem, error) {
	return nil, errors.New("connection reset")
}

func TestLoadPlanningSnapshot_PropagatesErrors(t *testing.T) {
	repo := failingInventory{seededStore(t)}

	_, err := LoadPlanningSnapshot(context.Background(), repo, "acct", "2025-03-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load inventory")
}

func TestMemoryStore_UpsertReplacesByNaturalKey(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	_, err := s.UpsertInventory(ctx, "acct", []domain.InventoryItem{{ItemName: "Flour", CurrentStock: 9}})
	require.NoError(t, err)

	items, err := s.ListInventory(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Flour", items[0].ItemName)
	assert.Equal(t, 9.0, items[0].CurrentStock)

	counts, err := s.DatasetCounts(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.DatasetInventory])
	assert.Equal(t, 2, counts[domain.DatasetForecasts])
	assert.Zero(t, counts[domain.DatasetSalesDaily])
}

func TestMemoryStore_GetRecipe(t *testing.T) {
	s := seededStore(t)

	r, err := s.GetRecipe(context.Background(), "acct", "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", r.RecipeID)

	_, err = s.GetRecipe(context.Background(), "acct", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetRecipe(context.Background(), "other", "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}
