package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/repository"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}
}

func floatPtr(v float64) *float64 { return &v }

func riskInventory() []domain.InventoryItem {
	return []domain.InventoryItem{
		{ItemName: "Salt", CurrentStock: 3, AvgDailyUsage: 0.1, PricePerUnitUSD: 1},
		{ItemName: "Rice", CurrentStock: 5, AvgDailyUsage: 2, ReorderPoint: 10, PricePerUnitUSD: 3, EstimatedExpirationDate: "2025-06-01"},
		{ItemName: "Cheese", CurrentStock: 20, AvgDailyUsage: 1, PricePerUnitUSD: 10, EstimatedExpirationDate: "2025-03-15"},
		{ItemName: "Milk", CurrentStock: 10, AvgDailyUsage: 1, PricePerUnitUSD: 2, WastePctHistorical: floatPtr(50), EstimatedExpirationDate: "2025-03-13"},
	}
}

func planningStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := repository.NewMemoryStore()

	_, err := s.UpsertInventory(ctx, "acct", []domain.InventoryItem{
		{ItemName: "Flour", Unit: "kg", CurrentStock: 1, Supplier: "Acme", PricePerUnitUSD: 1.5},
		{ItemName: "Eggs", Unit: "each", CurrentStock: 10, PricePerUnitUSD: 0.25},
	})
	require.NoError(t, err)
	_, err = s.UpsertMenuCatalog(ctx, "acct", []domain.MenuCatalogEntry{{MenuItemID: "m1", Name: "Pancakes", RecipeID: "r1"}})
	require.NoError(t, err)
	_, err = s.UpsertRecipes(ctx, "acct", []domain.Recipe{{
		RecipeID: "r1",
		Name:     "Pancakes",
		Ingredients: domain.IngredientLines{
			{ItemName: "Flour", Unit: "kg", AmountPerServing: 0.05},
			{ItemName: "Eggs", Unit: "each", AmountPerServing: 2},
		},
	}})
	require.NoError(t, err)
	_, err = s.UpsertForecasts(ctx, "acct", []domain.ForecastEntry{{Date: "2025-03-10", MenuItemID: "m1", PredictedUnits: 40}})
	require.NoError(t, err)
	return s
}

// memoryCache is a PlanCache that keeps entries in a map.
type memoryCache struct {
	mu          sync.Mutex
	plans       map[string]*domain.OrderPlan
	risks       map[string]*domain.RiskReport
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		plans: make(map[string]*domain.OrderPlan),
		risks: make(map[string]*domain.RiskReport),
	}
}

func (c *memoryCache) GetOrderPlan(_ context.Context, accountID, date string) (*domain.OrderPlan, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.plans[accountID+"|"+date]
	return p, ok, nil
}

func (c *memoryCache) SetOrderPlan(_ context.Context, accountID, date string, plan *domain.OrderPlan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[accountID+"|"+date] = plan
	return nil
}

func (c *memoryCache) GetRiskReport(_ context.Context, accountID, asOf string, window int) (*domain.RiskReport, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.risks[riskKey(accountID, asOf, window)]
	return r, ok, nil
}

func (c *memoryCache) SetRiskReport(_ context.Context, accountID, asOf string, window int, report *domain.RiskReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.risks[riskKey(accountID, asOf, window)] = report
	return nil
}

func (c *memoryCache) InvalidateAccount(_ context.Context, accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, accountID)
	c.plans = make(map[string]*domain.OrderPlan)
	c.risks = make(map[string]*domain.RiskReport)
	return nil
}

func riskKey(accountID, asOf string, window int) string {
	return accountID + "|" + asOf + "|" + strconv.Itoa(window)
}
