package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themagicbeanstock/backend-go/internal/domain"
)

func TestCalculateRecipeOrder(t *testing.T) {
	recipe := domain.Recipe{
		RecipeID: "R1",
		Ingredients: domain.IngredientLines{
			{ItemName: "Flour", Unit: "kg", AmountPerServing: 0.05},
			{ItemName: "Salt", Unit: "kg", AmountPerServing: 0.01},
		},
	}
	inventory := []domain.InventoryItem{{
		ItemName:           "Flour",
		CurrentStock:       1,
		Supplier:           "Acme",
		LeadTimeDays:       2,
		WastePctHistorical: floatPtr(5),
	}}

	lines, err := CalculateRecipeOrder(recipe, 40, inventory, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, lines, 2)

	flour := lines[0]
	assert.Equal(t, "Flour", flour.ItemName)
	assert.Equal(t, 2.0, flour.Needed)
	assert.Equal(t, 1.0, flour.InStock)
	assert.Equal(t, 1.0, flour.ToOrder)
	assert.Equal(t, "Acme", flour.Supplier)
	assert.Equal(t, 2.0, flour.LeadTimeDays)
	require.NotNil(t, flour.WastePctHistorical)
	assert.Equal(t, 5.0, *flour.WastePctHistorical)

	salt := lines[1]
	assert.Equal(t, 0.4, salt.Needed)
	assert.Zero(t, salt.InStock)
	assert.Equal(t, 0.4, salt.ToOrder)
	assert.Equal(t, "Unknown", salt.Supplier)
	assert.Nil(t, salt.WastePctHistorical)
}

func TestCalculateRecipeOrder_StockCoversNeed(t *testing.T) {
	recipe := domain.Recipe{Ingredients: domain.IngredientLines{{ItemName: "Rice", AmountPerServing: 0.2}}}
	inventory := []domain.InventoryItem{{ItemName: "Rice", Unit: "kg", CurrentStock: 50}}

	lines, err := CalculateRecipeOrder(recipe, 10, inventory, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Zero(t, lines[0].ToOrder)
	assert.Equal(t, "kg", lines[0].Unit)
}

func TestCalculateRecipeOrder_InvalidServings(t *testing.T) {
	recipe := domain.Recipe{Ingredients: domain.IngredientLines{{ItemName: "Rice", AmountPerServing: 1}}}

	for _, servings := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := CalculateRecipeOrder(recipe, servings, nil, DefaultPolicy())
		assert.ErrorIs(t, err, ErrInvalidServings)
	}

	lines, err := CalculateRecipeOrder(recipe, 0, nil, DefaultPolicy())
	require.NoError(t, err)
	assert.Zero(t, lines[0].Needed)
}
