package engine

import (
	"github.com/themagicbeanstock/backend-go/internal/domain"
)

// AggregateNeeds joins forecasts, menu catalog and recipes into the total
// amount of each inventory item the forecasted demand requires.
//
// Forecast rows whose menu item is unknown, has no recipe, or whose recipe has
// no ingredients contribute nothing. Needs are accumulated per item name
// first; stock and supplier are then looked up once per item from the
// inventory, so they never depend on the order recipes were visited in.
// The result is in first-encounter order.
func AggregateNeeds(
	forecasts []domain.ForecastEntry,
	menu []domain.MenuCatalogEntry,
	recipes []domain.Recipe,
	inventory []domain.InventoryItem,
	policy Policy,
) []domain.IngredientNeed {
	menuByID := make(map[string]domain.MenuCatalogEntry, len(menu))
	for _, m := range menu {
		menuByID[m.MenuItemID] = m
	}
	recipeByID := make(map[string]domain.Recipe, len(recipes))
	for _, r := range recipes {
		recipeByID[r.RecipeID] = r
	}
	invByName := indexInventory(inventory)

	type total struct {
		unit   string
		needed float64
	}
	totals := make(map[string]*total)
	var order []string

	for _, f := range forecasts {
		entry, ok := menuByID[f.MenuItemID]
		if !ok || entry.RecipeID == "" {
			continue
		}
		recipe, ok := recipeByID[entry.RecipeID]
		if !ok || len(recipe.Ingredients) == 0 {
			continue
		}

		units := num(f.PredictedUnits)
		for _, line := range recipe.Ingredients {
			if line.ItemName == "" {
				continue
			}
			t, seen := totals[line.ItemName]
			if !seen {
				t = &total{unit: resolveUnit(line, invByName)}
				totals[line.ItemName] = t
				order = append(order, line.ItemName)
			}
			t.needed += num(line.AmountPerServing) * units
		}
	}

	needs := make([]domain.IngredientNeed, 0, len(order))
	for _, name := range order {
		t := totals[name]
		need := domain.IngredientNeed{
			ItemName: name,
			Unit:     t.unit,
			Needed:   policy.round(t.needed),
		}
		if inv, ok := invByName[name]; ok {
			need.InStock = num(inv.CurrentStock)
			need.Supplier = inv.Supplier
		}
		needs = append(needs, need)
	}
	return needs
}

// BuildForecastLines resolves forecast rows to menu names, sorted by name.
func BuildForecastLines(forecasts []domain.ForecastEntry, menu []domain.MenuCatalogEntry) []domain.ForecastLine {
	names := make(map[string]string, len(menu))
	for _, m := range menu {
		names[m.MenuItemID] = m.Name
	}

	lines := make([]domain.ForecastLine, 0, len(forecasts))
	for _, f := range forecasts {
		name := names[f.MenuItemID]
		if name == "" {
			name = f.MenuItemID
		}
		lines = append(lines, domain.ForecastLine{
			MenuItemID:     f.MenuItemID,
			MenuName:       name,
			PredictedUnits: num(f.PredictedUnits),
		})
	}
	sortForecastLines(lines)
	return lines
}

func resolveUnit(line domain.RecipeIngredientLine, inv map[string]domain.InventoryItem) string {
	if line.Unit != "" {
		return line.Unit
	}
	if it, ok := inv[line.ItemName]; ok {
		return it.Unit
	}
	return ""
}

// indexInventory keys inventory by item name; a later duplicate replaces an earlier one.
func indexInventory(inventory []domain.InventoryItem) map[string]domain.InventoryItem {
	idx := make(map[string]domain.InventoryItem, len(inventory))
	for _, it := range inventory {
		idx[it.ItemName] = it
	}
	return idx
}
