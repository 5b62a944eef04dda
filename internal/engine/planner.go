package engine

import (
	"sort"

	"github.com/themagicbeanstock/backend-go/internal/domain"
)

// Plan turns aggregated needs into order lines, supplier order lists and plan stats.
//
// Lines are ordered by descending quantity to order; ties keep input order.
// Supplier groups only contain lines with something to order.
func Plan(needs []domain.IngredientNeed, forecast []domain.ForecastLine, policy Policy) domain.OrderPlan {
	lines := make([]domain.OrderLine, 0, len(needs))
	for _, n := range needs {
		needed := num(n.Needed)
		inStock := num(n.InStock)
		lines = append(lines, domain.OrderLine{
			ItemName: n.ItemName,
			Unit:     n.Unit,
			Needed:   policy.round(needed),
			InStock:  policy.round(inStock),
			ToOrder:  policy.round(max(0, needed-inStock)),
			Supplier: policy.supplierLabel(n.Supplier),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].ToOrder > lines[j].ToOrder
	})

	if forecast == nil {
		forecast = []domain.ForecastLine{}
	}
	bySupplier := GroupBySupplier(lines, policy)

	return domain.OrderPlan{
		Forecast:   forecast,
		Lines:      lines,
		BySupplier: bySupplier,
		Stats:      planStats(lines, bySupplier, forecast, needs, policy),
	}
}

// GroupBySupplier groups the lines with a positive quantity to order by
// supplier. Groups are sorted by supplier, items by item name.
func GroupBySupplier(lines []domain.OrderLine, policy Policy) []domain.SupplierGroup {
	groups := make(map[string][]domain.OrderLine)
	for _, l := range lines {
		if l.ToOrder <= 0 {
			continue
		}
		key := policy.supplierLabel(l.Supplier)
		groups[key] = append(groups[key], l)
	}

	out := make([]domain.SupplierGroup, 0, len(groups))
	for supplier, items := range groups {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ItemName < items[j].ItemName
		})
		out = append(out, domain.SupplierGroup{Supplier: supplier, Items: items})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Supplier < out[j].Supplier
	})
	return out
}

func planStats(
	lines []domain.OrderLine,
	bySupplier []domain.SupplierGroup,
	forecast []domain.ForecastLine,
	needs []domain.IngredientNeed,
	policy Policy,
) domain.PlanStats {
	stats := domain.PlanStats{
		MenuItems:                len(forecast),
		IngredientsTracked:       len(lines),
		SuppliersWithOrdersCount: len(bySupplier),
	}

	var predicted float64
	for _, f := range forecast {
		predicted += num(f.PredictedUnits)
	}
	stats.TotalPredictedUnits = policy.round(predicted)

	suppliers := make(map[string]struct{})
	for _, l := range lines {
		suppliers[l.Supplier] = struct{}{}
		if l.ToOrder > 0 {
			stats.ShortageLineCount++
		}
	}
	stats.SuppliersCount = len(suppliers)

	// Coverage sums the already rounded needs and rounds only the final ratio.
	var totalNeeded, totalUsed float64
	for _, n := range needs {
		needed := num(n.Needed)
		totalNeeded += needed
		totalUsed += min(num(n.InStock), needed)
	}
	if totalNeeded > 0 {
		stats.CoveragePct = policy.round(totalUsed / totalNeeded * 100)
	}
	return stats
}

func sortForecastLines(lines []domain.ForecastLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].MenuName < lines[j].MenuName
	})
}

// PlanForecast aggregates the needs of one forecast snapshot and plans them.
func PlanForecast(
	forecasts []domain.ForecastEntry,
	menu []domain.MenuCatalogEntry,
	recipes []domain.Recipe,
	inventory []domain.InventoryItem,
	policy Policy,
) domain.OrderPlan {
	needs := AggregateNeeds(forecasts, menu, recipes, inventory, policy)
	return Plan(needs, BuildForecastLines(forecasts, menu), policy)
}
