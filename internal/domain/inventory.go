package domain

import "time"

// InventoryItem is a single stock record uploaded for an account.
// ItemName is expected to be unique within an account.
type InventoryItem struct {
	ID                      string    `json:"id" db:"id"`
	AccountID               string    `json:"account_id" db:"account_id"`
	ItemName                string    `json:"item_name" db:"item_name"`
	Category                string    `json:"category" db:"category"`
	Subcategory             string    `json:"subcategory" db:"subcategory"`
	Unit                    string    `json:"unit" db:"unit"`
	CurrentStock            float64   `json:"current_stock" db:"current_stock"`
	AvgDailyUsage           float64   `json:"avg_daily_usage" db:"avg_daily_usage"`
	ReorderPoint            float64   `json:"reorder_point" db:"reorder_point"`
	LeadTimeDays            float64   `json:"lead_time_days" db:"lead_time_days"`
	Supplier                string    `json:"supplier" db:"supplier"`
	PricePerUnitUSD         float64   `json:"price_per_unit_usd" db:"price_per_unit_usd"`
	WastePctHistorical      *float64  `json:"waste_pct_historical" db:"waste_pct_historical"` // nil means unknown
	PurchaseDate            string    `json:"purchase_date" db:"purchase_date"`
	EstimatedExpirationDate string    `json:"estimated_expiration_date" db:"estimated_expiration_date"` // YYYY-MM-DD, empty when unknown
	Storage                 string    `json:"storage" db:"storage"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
}

// EnrichedInventoryItem is an InventoryItem with its waste-risk figures.
type EnrichedInventoryItem struct {
	InventoryItem

	DaysToExpire       *int     `json:"days_to_expire"`
	UsableBeforeExpire *float64 `json:"usable_before_expire"`
	ExcessAtRisk       float64  `json:"excess_at_risk"`
	EstimatedWaste     float64  `json:"estimated_waste"`
	WasteValueUSD      float64  `json:"waste_value_usd"`
	AtRisk             bool     `json:"at_risk"`
	RiskWindowDays     int      `json:"risk_window_days"`
}

// RiskPortfolioStats summarises an evaluated inventory.
// WasteValueUSD only covers items flagged at risk.
type RiskPortfolioStats struct {
	TotalItems        int     `json:"total_items"`
	AtRiskCount       int     `json:"at_risk_count"`
	ExpiringSoonCount int     `json:"expiring_soon_count"`
	LowStockCount     int     `json:"low_stock_count"`
	WasteValueUSD     float64 `json:"waste_value_usd"`
}

// RiskReport is the result of a waste-risk evaluation.
type RiskReport struct {
	Enriched []EnrichedInventoryItem `json:"items"`
	Stats    RiskPortfolioStats      `json:"stats"`
}

// SustainabilityStats is RiskPortfolioStats without the low-stock count.
type SustainabilityStats struct {
	TotalItems        int     `json:"total_items"`
	AtRiskCount       int     `json:"at_risk_count"`
	ExpiringSoonCount int     `json:"expiring_soon_count"`
	WasteValueUSD     float64 `json:"waste_value_usd"`
}

// SustainabilityReport lists at-risk items ordered by waste value.
type SustainabilityReport struct {
	Items []EnrichedInventoryItem `json:"items"`
	Stats SustainabilityStats     `json:"stats"`
}
