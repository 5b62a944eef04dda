package domain

import "time"

// SalesRecord is one day of sales for a menu item.
type SalesRecord struct {
	AccountID    string  `json:"account_id" db:"account_id"`
	Date         string  `json:"date" db:"sales_date"`
	MenuItemID   string  `json:"menu_item_id" db:"menu_item_id"`
	MenuItemName string  `json:"menu_item_name" db:"menu_item_name"`
	RecipeID     string  `json:"recipe_id" db:"recipe_id"`
	UnitsSold    float64 `json:"units_sold" db:"units_sold"`
	UnitPriceUSD float64 `json:"unit_price_usd" db:"unit_price_usd"`
	RevenueUSD   float64 `json:"revenue_usd" db:"revenue_usd"`
	DayOfWeek    string  `json:"day_of_week" db:"day_of_week"`
	IsPromoDay   bool    `json:"is_promo_day" db:"is_promo_day"`
}

// Key is the natural identity of a sales record.
func (s SalesRecord) Key() string {
	return s.Date + "_" + s.MenuItemID
}

// UnitConversion converts quantities of one item between units.
type UnitConversion struct {
	AccountID  string  `json:"account_id" db:"account_id"`
	ItemName   string  `json:"item_name" db:"item_name"`
	FromUnit   string  `json:"from_unit" db:"from_unit"`
	ToUnit     string  `json:"to_unit" db:"to_unit"`
	Multiplier float64 `json:"multiplier" db:"multiplier"`
}

// Key is the natural identity of a unit conversion.
func (u UnitConversion) Key() string {
	return u.ItemName + "_" + u.FromUnit + "_" + u.ToUnit
}

// Dataset names one uploaded collection.
type Dataset string

const (
	DatasetInventory       Dataset = "inventory"
	DatasetSalesDaily      Dataset = "salesDaily"
	DatasetRecipes         Dataset = "recipes"
	DatasetMenuCatalog     Dataset = "menuCatalog"
	DatasetUnitConversions Dataset = "unitConversions"
	DatasetForecasts       Dataset = "forecasts"
)

// AllDatasets lists datasets in display order.
var AllDatasets = []Dataset{
	DatasetInventory,
	DatasetSalesDaily,
	DatasetRecipes,
	DatasetMenuCatalog,
	DatasetUnitConversions,
	DatasetForecasts,
}

// DatasetStatus reports whether a dataset has been uploaded.
type DatasetStatus struct {
	Dataset Dataset `json:"dataset"`
	Count   int     `json:"count"`
	Present bool    `json:"present"`
}

// UploadedFile represents an uploaded file for processing
type UploadedFile struct {
	Filename string
	Path     string
	Size     int64
}

// IngestResult reports the outcome of ingesting one file.
type IngestResult struct {
	Kind        string    `json:"kind"`
	Filename    string    `json:"filename"`
	Rows        int       `json:"rows"`
	Written     int       `json:"written"`
	Skipped     int       `json:"skipped"`
	ArchivedKey string    `json:"archived_key,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}
