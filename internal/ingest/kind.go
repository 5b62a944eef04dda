package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/themagicbeanstock/backend-go/internal/domain"
)

// Kind is the type of an uploaded file.
type Kind string

const (
	KindInventoryCSV   Kind = "inventory_csv"
	KindSalesCSV       Kind = "sales_csv"
	KindRecipesJSON    Kind = "recipes_json"
	KindMenuJSON       Kind = "menu_json"
	KindConversionsCSV Kind = "conversions_csv"
	KindForecastsJSON  Kind = "forecasts_json"
)

var (
	ErrUnknownKind      = errors.New("unknown upload kind")
	ErrUnsupportedFile  = errors.New("unsupported file type for upload kind")
	ErrForecastDateless = errors.New("forecast map uploads need a date")
	ErrMalformed        = errors.New("malformed upload")
)

// Kinds lists every accepted upload kind.
var Kinds = []Kind{
	KindInventoryCSV,
	KindSalesCSV,
	KindRecipesJSON,
	KindMenuJSON,
	KindConversionsCSV,
	KindForecastsJSON,
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Dataset is the collection a kind writes to.
func (k Kind) Dataset() domain.Dataset {
	switch k {
	case KindInventoryCSV:
		return domain.DatasetInventory
	case KindSalesCSV:
		return domain.DatasetSalesDaily
	case KindRecipesJSON:
		return domain.DatasetRecipes
	case KindMenuJSON:
		return domain.DatasetMenuCatalog
	case KindConversionsCSV:
		return domain.DatasetUnitConversions
	case KindForecastsJSON:
		return domain.DatasetForecasts
	}
	return ""
}

// IsTabular reports whether the kind is read as rows with a header.
func (k Kind) IsTabular() bool {
	return strings.HasSuffix(string(k), "_csv")
}

// AcceptsFile checks the filename extension against the kind.
// Tabular kinds take .csv or .xlsx, JSON kinds take .json.
func (k Kind) AcceptsFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if k.IsTabular() {
		return ext == ".csv" || ext == ".xlsx"
	}
	return ext == ".json"
}

// KindForFilename guesses the kind from a conventional file name such as
// demo_inventory_current.csv or demo_menu_catalog.json.
func KindForFilename(filename string) (Kind, bool) {
	base := strings.ToLower(filepath.Base(filename))
	ext := filepath.Ext(base)
	isJSON := ext == ".json"
	tabular := ext == ".csv" || ext == ".xlsx"

	switch {
	case tabular && strings.Contains(base, "inventory"):
		return KindInventoryCSV, true
	case tabular && strings.Contains(base, "sales"):
		return KindSalesCSV, true
	case tabular && strings.Contains(base, "conversion"):
		return KindConversionsCSV, true
	case isJSON && strings.Contains(base, "recipe"):
		return KindRecipesJSON, true
	case isJSON && strings.Contains(base, "menu"):
		return KindMenuJSON, true
	case isJSON && strings.Contains(base, "forecast"):
		return KindForecastsJSON, true
	}
	return "", false
}
