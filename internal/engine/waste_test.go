package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themagicbeanstock/backend-go/internal/domain"
)

var evalToday = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func daysFromToday(n int) string {
	return evalToday.AddDate(0, 0, n).Format(DateLayout)
}

func TestEvaluate_ExcessStockExpiringWithinWindow(t *testing.T) {
	items := []domain.InventoryItem{{
		ItemName:                "Spinach",
		CurrentStock:            100,
		AvgDailyUsage:           10,
		EstimatedExpirationDate: daysFromToday(5),
		PricePerUnitUSD:         2,
	}}

	report := Evaluate(items, DefaultPolicy(), evalToday)
	require.Len(t, report.Enriched, 1)

	got := report.Enriched[0]
	require.NotNil(t, got.DaysToExpire)
	assert.Equal(t, 5, *got.DaysToExpire)
	require.NotNil(t, got.UsableBeforeExpire)
	assert.Equal(t, 50.0, *got.UsableBeforeExpire)
	assert.Equal(t, 50.0, got.ExcessAtRisk)
	assert.Equal(t, 5.0, got.EstimatedWaste)
	assert.Equal(t, 10.0, got.WasteValueUSD)
	assert.True(t, got.AtRisk)
	assert.Equal(t, 7, got.RiskWindowDays)
	assert.Equal(t, "Spinach", got.ItemName)
}

func TestEvaluate_NoExpirationNeverAtRisk(t *testing.T) {
	items := []domain.InventoryItem{
		{ItemName: "Rice", CurrentStock: 10000, AvgDailyUsage: 0, PricePerUnitUSD: 3},
		{ItemName: "Beans", CurrentStock: 500, EstimatedExpirationDate: "next week"},
	}

	report := Evaluate(items, DefaultPolicy(), evalToday)
	for _, e := range report.Enriched {
		assert.Nil(t, e.DaysToExpire, e.ItemName)
		assert.Nil(t, e.UsableBeforeExpire, e.ItemName)
		assert.Zero(t, e.ExcessAtRisk, e.ItemName)
		assert.Zero(t, e.WasteValueUSD, e.ItemName)
		assert.False(t, e.AtRisk, e.ItemName)
	}
	assert.Zero(t, report.Stats.AtRiskCount)
}

func TestEvaluate_RiskWindow(t *testing.T) {
	items := []domain.InventoryItem{{
		ItemName:                "Cream",
		CurrentStock:            40,
		AvgDailyUsage:           1,
		EstimatedExpirationDate: daysFromToday(10),
		PricePerUnitUSD:         1,
	}}

	assert.False(t, Evaluate(items, DefaultPolicy(), evalToday).Enriched[0].AtRisk)

	wide := Evaluate(items, DefaultPolicy().WithRiskWindow(14), evalToday).Enriched[0]
	assert.True(t, wide.AtRisk)
	assert.Equal(t, 14, wide.RiskWindowDays)
}

func TestEvaluate_WasteRate(t *testing.T) {
	items := []domain.InventoryItem{
		{ItemName: "Default", CurrentStock: 10, EstimatedExpirationDate: daysFromToday(1), PricePerUnitUSD: 1},
		{ItemName: "Historical", CurrentStock: 10, EstimatedExpirationDate: daysFromToday(1), PricePerUnitUSD: 1, WastePctHistorical: floatPtr(25)},
		{ItemName: "Zero", CurrentStock: 10, EstimatedExpirationDate: daysFromToday(1), PricePerUnitUSD: 1, WastePctHistorical: floatPtr(0)},
	}

	report := Evaluate(items, DefaultPolicy(), evalToday)
	assert.Equal(t, 1.0, report.Enriched[0].EstimatedWaste)
	assert.Equal(t, 2.5, report.Enriched[1].EstimatedWaste)
	assert.Equal(t, 0.0, report.Enriched[2].EstimatedWaste)
	// zero waste rate still leaves excess stock at risk
	assert.True(t, report.Enriched[2].AtRisk)

	policy := DefaultPolicy()
	policy.DefaultWastePct = 50
	assert.Equal(t, 5.0, Evaluate(items[:1], policy, evalToday).Enriched[0].EstimatedWaste)
}

func TestEvaluate_EpsilonAbsorbsNoise(t *testing.T) {
	items := []domain.InventoryItem{{
		ItemName:                "Butter",
		CurrentStock:            2.00005,
		AvgDailyUsage:           1,
		EstimatedExpirationDate: daysFromToday(2),
	}}

	got := Evaluate(items, DefaultPolicy(), evalToday).Enriched[0]
	assert.False(t, got.AtRisk)
}

func TestEvaluate_NonFiniteNumbersCoercedToZero(t *testing.T) {
	items := []domain.InventoryItem{{
		ItemName:                "Oil",
		CurrentStock:            math.NaN(),
		AvgDailyUsage:           math.Inf(1),
		PricePerUnitUSD:         math.NaN(),
		EstimatedExpirationDate: daysFromToday(2),
		WastePctHistorical:      floatPtr(math.NaN()),
	}}

	got := Evaluate(items, DefaultPolicy(), evalToday).Enriched[0]
	require.NotNil(t, got.UsableBeforeExpire)
	assert.Zero(t, *got.UsableBeforeExpire)
	assert.Zero(t, got.ExcessAtRisk)
	assert.Zero(t, got.EstimatedWaste)
	assert.Zero(t, got.WasteValueUSD)
	assert.False(t, got.AtRisk)
}

func TestEvaluate_Stats(t *testing.T) {
	items := []domain.InventoryItem{
		{ItemName: "A", CurrentStock: 100, AvgDailyUsage: 10, EstimatedExpirationDate: daysFromToday(5), PricePerUnitUSD: 2},
		{ItemName: "B", CurrentStock: 20, AvgDailyUsage: 1, EstimatedExpirationDate: daysFromToday(2), PricePerUnitUSD: 3, WastePctHistorical: floatPtr(50)},
		{ItemName: "C", CurrentStock: 100, AvgDailyUsage: 1, EstimatedExpirationDate: daysFromToday(30), PricePerUnitUSD: 5},
		{ItemName: "D", CurrentStock: 1, ReorderPoint: 5},
	}

	report := Evaluate(items, DefaultPolicy(), evalToday)

	assert.Equal(t, domain.RiskPortfolioStats{
		TotalItems:        4,
		AtRiskCount:       2,
		ExpiringSoonCount: 1,
		LowStockCount:     1,
		WasteValueUSD:     37,
	}, report.Stats)

	// C carries estimated waste value but is outside the window.
	assert.Equal(t, 35.0, report.Enriched[2].WasteValueUSD)
	assert.False(t, report.Enriched[2].AtRisk)
}

func TestEvaluate_StatsWasteValueCoversOnlyAtRiskItems(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := make([]domain.InventoryItem, 0, 300)
	for i := 0; i < 300; i++ {
		it := domain.InventoryItem{
			ItemName:        string(rune('a' + i%26)),
			CurrentStock:    rng.Float64() * 200,
			AvgDailyUsage:   rng.Float64() * 15,
			PricePerUnitUSD: rng.Float64() * 9,
			ReorderPoint:    rng.Float64() * 50,
		}
		if i%5 != 0 {
			it.EstimatedExpirationDate = daysFromToday(rng.Intn(20) - 3)
		}
		if i%3 == 0 {
			it.WastePctHistorical = floatPtr(rng.Float64() * 40)
		}
		items = append(items, it)
	}

	policy := DefaultPolicy()
	report := Evaluate(items, policy, evalToday)

	var expected float64
	for _, e := range report.Enriched {
		if e.AtRisk {
			require.NotNil(t, e.DaysToExpire)
			raw := e.CurrentStock - e.AvgDailyUsage*float64(*e.DaysToExpire)
			require.Greater(t, raw, 0.0)
			require.GreaterOrEqual(t, e.ExcessAtRisk, 0.0)
			require.LessOrEqual(t, *e.DaysToExpire, policy.RiskWindowDays)
			expected += e.WasteValueUSD
		}
		if e.EstimatedExpirationDate == "" {
			require.False(t, e.AtRisk)
		}
	}
	assert.InDelta(t, Round3(expected), report.Stats.WasteValueUSD, 1e-9)
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	items := []domain.InventoryItem{
		{ItemName: "A", CurrentStock: 100, AvgDailyUsage: 10, EstimatedExpirationDate: daysFromToday(5)},
	}
	before := items[0]

	_ = Evaluate(items, DefaultPolicy(), evalToday)
	assert.Equal(t, before, items[0])
}

func TestEvaluate_EmptyInput(t *testing.T) {
	report := Evaluate(nil, DefaultPolicy(), evalToday)
	assert.Empty(t, report.Enriched)
	assert.Equal(t, domain.RiskPortfolioStats{}, report.Stats)
}

func TestSortByRisk(t *testing.T) {
	items := []domain.EnrichedInventoryItem{
		{InventoryItem: domain.InventoryItem{ItemName: "no-date"}},
		{InventoryItem: domain.InventoryItem{ItemName: "safe-later"}, DaysToExpire: intPtr(20)},
		{InventoryItem: domain.InventoryItem{ItemName: "risk-b"}, DaysToExpire: intPtr(4), AtRisk: true},
		{InventoryItem: domain.InventoryItem{ItemName: "risk-a"}, DaysToExpire: intPtr(4), AtRisk: true},
		{InventoryItem: domain.InventoryItem{ItemName: "risk-soon"}, DaysToExpire: intPtr(1), AtRisk: true},
		{InventoryItem: domain.InventoryItem{ItemName: "safe-soon"}, DaysToExpire: intPtr(2)},
	}

	sorted := SortByRisk(items)

	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.ItemName
	}
	assert.Equal(t, []string{"risk-soon", "risk-a", "risk-b", "safe-soon", "safe-later", "no-date"}, names)
	assert.Equal(t, "no-date", items[0].ItemName, "input must keep its order")
}

func TestAtRiskByWasteValue(t *testing.T) {
	items := []domain.EnrichedInventoryItem{
		{InventoryItem: domain.InventoryItem{ItemName: "low"}, AtRisk: true, WasteValueUSD: 1},
		{InventoryItem: domain.InventoryItem{ItemName: "skip"}, WasteValueUSD: 99},
		{InventoryItem: domain.InventoryItem{ItemName: "high"}, AtRisk: true, WasteValueUSD: 12},
	}

	got := AtRiskByWasteValue(items)
	require.Len(t, got, 2)
	assert.Equal(t, "high", got[0].ItemName)
	assert.Equal(t, "low", got[1].ItemName)
}
