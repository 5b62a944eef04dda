package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ForecastEntry is the predicted demand of one menu item on one date.
type ForecastEntry struct {
	AccountID      string  `json:"account_id" db:"account_id"`
	Date           string  `json:"date" db:"forecast_date"`
	MenuItemID     string  `json:"menu_item_id" db:"menu_item_id"`
	PredictedUnits float64 `json:"predicted_units" db:"predicted_units"`
	// Model names the forecaster that produced the row, when known.
	Model string `json:"model,omitempty" db:"model"`
}

// ForecastList is the stored forecasts for one date, ordered by menu item id.
type ForecastList struct {
	Date      string          `json:"date"`
	Count     int             `json:"count"`
	Message   string          `json:"message,omitempty"`
	Forecasts []ForecastEntry `json:"forecasts"`
}

// MenuCatalogEntry links a menu item to the recipe that produces it.
type MenuCatalogEntry struct {
	AccountID  string `json:"account_id" db:"account_id"`
	MenuItemID string `json:"menu_item_id" db:"menu_item_id"`
	Name       string `json:"name" db:"name"`
	RecipeID   string `json:"recipe_id" db:"recipe_id"`
}

// RecipeIngredientLine is the amount of one inventory item used per serving.
type RecipeIngredientLine struct {
	ItemName         string  `json:"itemName"`
	Unit             string  `json:"unit"`
	AmountPerServing float64 `json:"amountPerServing"`
}

// IngredientLines is stored as a JSONB column.
type IngredientLines []RecipeIngredientLine

// Value implements driver.Valuer.
func (l IngredientLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IngredientLines) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported ingredients type %T", src)
	}
	return json.Unmarshal(raw, l)
}

// Recipe is a set of ingredient lines. Line order carries no meaning.
type Recipe struct {
	AccountID   string          `json:"account_id" db:"account_id"`
	RecipeID    string          `json:"recipe_id" db:"recipe_id"`
	Name        string          `json:"name" db:"name"`
	Ingredients IngredientLines `json:"ingredients" db:"ingredients"`
}

// IngredientNeed is the aggregated requirement for one inventory item.
type IngredientNeed struct {
	ItemName string  `json:"item_name"`
	Unit     string  `json:"unit"`
	Needed   float64 `json:"needed"`
	InStock  float64 `json:"in_stock"`
	Supplier string  `json:"supplier"`
}

// OrderLine is an IngredientNeed with its shortfall.
type OrderLine struct {
	ItemName string  `json:"item_name"`
	Unit     string  `json:"unit"`
	Needed   float64 `json:"needed"`
	InStock  float64 `json:"in_stock"`
	ToOrder  float64 `json:"to_order"`
	Supplier string  `json:"supplier"`
}

// SupplierGroup holds the shortage lines of one supplier, ordered by item name.
type SupplierGroup struct {
	Supplier string      `json:"supplier"`
	Items    []OrderLine `json:"items"`
}

// ForecastLine is a forecast row resolved against the menu catalog for display.
type ForecastLine struct {
	MenuItemID     string  `json:"menu_item_id"`
	MenuName       string  `json:"menu_name"`
	PredictedUnits float64 `json:"predicted_units"`
}

// PlanStats summarises an order plan.
type PlanStats struct {
	MenuItems                int     `json:"menu_items"`
	TotalPredictedUnits      float64 `json:"total_predicted_units"`
	IngredientsTracked       int     `json:"ingredients_tracked"`
	ShortageLineCount        int     `json:"shortage_line_count"`
	SuppliersCount           int     `json:"suppliers_count"`
	SuppliersWithOrdersCount int     `json:"suppliers_with_orders_count"`
	CoveragePct              float64 `json:"coverage_pct"`
}

// OrderPlan is the full order plan for one forecast date.
type OrderPlan struct {
	Date       string          `json:"date,omitempty"`
	Message    string          `json:"message,omitempty"`
	Forecast   []ForecastLine  `json:"forecast"`
	Lines      []OrderLine     `json:"lines"`
	BySupplier []SupplierGroup `json:"by_supplier"`
	Stats      PlanStats       `json:"stats"`
}

// RecipeOrderLine is an OrderLine for an ad-hoc recipe calculation,
// carrying inventory fields shown next to it.
type RecipeOrderLine struct {
	OrderLine

	WastePctHistorical *float64 `json:"waste_pct_historical"`
	LeadTimeDays       float64  `json:"lead_time_days"`
}
