package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/engine"
)

// Options tune how a file is turned into records.
type Options struct {
	// ForecastDate applies to forecast uploads in map form.
	ForecastDate string
	// NewID assigns inventory row ids. Defaults to random UUIDs.
	NewID func() string
	// Now stamps inventory rows. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Batch is the parsed content of one upload. Only the slice matching Kind is set.
type Batch struct {
	Kind    Kind
	Rows    int
	Skipped int

	Inventory   []domain.InventoryItem
	Sales       []domain.SalesRecord
	Recipes     []domain.Recipe
	Menu        []domain.MenuCatalogEntry
	Conversions []domain.UnitConversion
	Forecasts   []domain.ForecastEntry
}

// Len is the number of records ready to write.
func (b *Batch) Len() int {
	return len(b.Inventory) + len(b.Sales) + len(b.Recipes) + len(b.Menu) + len(b.Conversions) + len(b.Forecasts)
}

// Parse reads a file of the given kind. Rows without their identity fields
// are counted as skipped rather than failing the upload.
func Parse(kind Kind, filename string, r io.Reader, opts Options) (*Batch, error) {
	if !kind.AcceptsFile(filename) {
		return nil, fmt.Errorf("%w: %s for %s", ErrUnsupportedFile, filename, kind)
	}

	if kind.IsTabular() {
		rows, err := ReadTable(filename, r)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindInventoryCSV:
			return parseInventory(rows, opts), nil
		case KindSalesCSV:
			return parseSales(rows), nil
		case KindConversionsCSV:
			return parseConversions(rows), nil
		}
	}

	switch kind {
	case KindRecipesJSON:
		return parseRecipes(r)
	case KindMenuJSON:
		return parseMenu(r)
	case KindForecastsJSON:
		return parseForecasts(r, opts.ForecastDate)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func parseInventory(rows []Row, opts Options) *Batch {
	b := &Batch{Kind: KindInventoryCSV, Rows: len(rows)}
	createdAt := opts.now().UTC()

	for _, r := range rows {
		if !r.Has("itemName") {
			b.Skipped++
			continue
		}
		b.Inventory = append(b.Inventory, domain.InventoryItem{
			ID:                      opts.newID(),
			ItemName:                r.Get("itemName"),
			Category:                r.Get("category"),
			Subcategory:             r.Get("subcategory"),
			Unit:                    r.Get("unit"),
			CurrentStock:            number(r.Get("currentStock")),
			AvgDailyUsage:           number(r.Get("avgDailyUsage")),
			ReorderPoint:            number(r.Get("reorderPoint")),
			LeadTimeDays:            number(r.Get("leadTimeDays")),
			Supplier:                r.Get("supplier"),
			PricePerUnitUSD:         number(r.Get("pricePerUnitUSD")),
			WastePctHistorical:      optionalNumber(r.Get("wastePctHistorical")),
			PurchaseDate:            r.Get("purchaseDate"),
			EstimatedExpirationDate: r.Get("estimatedExpirationDate"),
			Storage:                 r.Get("storage"),
			CreatedAt:               createdAt,
		})
	}
	return b
}

func parseSales(rows []Row) *Batch {
	b := &Batch{Kind: KindSalesCSV, Rows: len(rows)}

	for _, r := range rows {
		if !r.Has("date") || !r.Has("menuItemId") {
			b.Skipped++
			continue
		}
		if _, ok := engine.LocalMidnight(r.Get("date"), nil); !ok {
			b.Skipped++
			continue
		}
		b.Sales = append(b.Sales, domain.SalesRecord{
			Date:         r.Get("date"),
			MenuItemID:   r.Get("menuItemId"),
			MenuItemName: r.Get("menuItemName"),
			RecipeID:     r.Get("recipeId"),
			UnitsSold:    number(r.Get("unitsSold")),
			UnitPriceUSD: number(r.Get("unitPriceUSD")),
			RevenueUSD:   number(r.Get("revenueUSD")),
			DayOfWeek:    r.Get("dayOfWeek"),
			IsPromoDay:   strings.EqualFold(r.Get("isPromoDay"), "true"),
		})
	}
	return b
}

func parseConversions(rows []Row) *Batch {
	b := &Batch{Kind: KindConversionsCSV, Rows: len(rows)}

	for _, r := range rows {
		if !r.Has("itemName") || !r.Has("fromUnit") || !r.Has("toUnit") {
			b.Skipped++
			continue
		}
		multiplier := 1.0
		if r.Has("multiplier") {
			multiplier = number(r.Get("multiplier"))
		}
		b.Conversions = append(b.Conversions, domain.UnitConversion{
			ItemName:   r.Get("itemName"),
			FromUnit:   r.Get("fromUnit"),
			ToUnit:     r.Get("toUnit"),
			Multiplier: multiplier,
		})
	}
	return b
}

// number parses a numeric cell. Blank or non-numeric cells become 0.
func number(s string) float64 {
	v := optionalNumber(s)
	if v == nil {
		return 0
	}
	return *v
}

// optionalNumber parses a numeric cell, returning nil when blank or non-numeric.
func optionalNumber(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return nil
	}
	return &v
}
