package engine

import (
	"errors"
	"fmt"

	"github.com/themagicbeanstock/backend-go/internal/domain"
)

// ErrInvalidServings is returned when a recipe calculation is asked for a
// negative or non-numeric number of servings.
var ErrInvalidServings = errors.New("servings must be a non-negative number")

// CalculateRecipeOrder computes what must be ordered to cook servings of a
// single recipe from current stock. Lines follow the recipe's ingredient order.
func CalculateRecipeOrder(
	recipe domain.Recipe,
	servings float64,
	inventory []domain.InventoryItem,
	policy Policy,
) ([]domain.RecipeOrderLine, error) {
	if !isFinite(servings) || servings < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidServings, servings)
	}

	invByName := indexInventory(inventory)
	lines := make([]domain.RecipeOrderLine, 0, len(recipe.Ingredients))

	for _, ing := range recipe.Ingredients {
		needed := num(ing.AmountPerServing) * servings
		inv, ok := invByName[ing.ItemName]

		var inStock float64
		line := domain.RecipeOrderLine{}
		if ok {
			inStock = num(inv.CurrentStock)
			line.WastePctHistorical = inv.WastePctHistorical
			line.LeadTimeDays = num(inv.LeadTimeDays)
		}

		line.OrderLine = domain.OrderLine{
			ItemName: ing.ItemName,
			Unit:     resolveUnit(ing, invByName),
			Needed:   policy.round(needed),
			InStock:  policy.round(inStock),
			ToOrder:  policy.round(max(0, needed-inStock)),
			Supplier: policy.supplierLabel(inv.Supplier),
		}
		lines = append(lines, line)
	}
	return lines, nil
}
