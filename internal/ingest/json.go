package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/engine"
)

// flexFloat accepts a JSON number, a numeric string or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexFloat(number(s))
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*f = flexFloat(v)
	return nil
}

// flexString accepts a JSON string or number, so numeric ids survive.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	*s = flexString(strings.TrimSpace(string(b)))
	return nil
}

type recipeDoc struct {
	RecipeID    flexString `json:"recipeId"`
	Name        string     `json:"name"`
	Ingredients []struct {
		ItemName         string    `json:"itemName"`
		Unit             string    `json:"unit"`
		AmountPerServing flexFloat `json:"amountPerServing"`
	} `json:"ingredients"`
}

type menuDoc struct {
	MenuItemID flexString `json:"menuItemId"`
	Name       string     `json:"name"`
	RecipeID   flexString `json:"recipeId"`
}

type forecastDoc struct {
	Date           string     `json:"date"`
	MenuItemID     flexString `json:"menuItemId"`
	PredictedUnits flexFloat  `json:"predictedUnits"`
	Model          string     `json:"model"`
}

func decodeArray(r io.Reader, dst interface{}) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode json: %v", ErrMalformed, err)
	}
	return nil
}

func parseRecipes(r io.Reader) (*Batch, error) {
	var docs []recipeDoc
	if err := decodeArray(r, &docs); err != nil {
		return nil, err
	}

	b := &Batch{Kind: KindRecipesJSON, Rows: len(docs)}
	for _, d := range docs {
		if d.RecipeID == "" {
			b.Skipped++
			continue
		}
		lines := make(domain.IngredientLines, 0, len(d.Ingredients))
		for _, ing := range d.Ingredients {
			name := strings.TrimSpace(ing.ItemName)
			if name == "" {
				continue
			}
			lines = append(lines, domain.RecipeIngredientLine{
				ItemName:         name,
				Unit:             strings.TrimSpace(ing.Unit),
				AmountPerServing: float64(ing.AmountPerServing),
			})
		}
		b.Recipes = append(b.Recipes, domain.Recipe{
			RecipeID:    string(d.RecipeID),
			Name:        strings.TrimSpace(d.Name),
			Ingredients: lines,
		})
	}
	return b, nil
}

func parseMenu(r io.Reader) (*Batch, error) {
	var docs []menuDoc
	if err := decodeArray(r, &docs); err != nil {
		return nil, err
	}

	b := &Batch{Kind: KindMenuJSON, Rows: len(docs)}
	for _, d := range docs {
		if d.MenuItemID == "" {
			b.Skipped++
			continue
		}
		b.Menu = append(b.Menu, domain.MenuCatalogEntry{
			MenuItemID: string(d.MenuItemID),
			Name:       strings.TrimSpace(d.Name),
			RecipeID:   string(d.RecipeID),
		})
	}
	return b, nil
}

// parseForecasts accepts either an array of forecast rows or an object
// mapping menu item id to predicted units, which needs date.
func parseForecasts(r io.Reader, date string) (*Batch, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read forecasts: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	date = strings.TrimSpace(date)
	if date != "" {
		if _, ok := engine.LocalMidnight(date, nil); !ok {
			return nil, fmt.Errorf("%w: invalid forecast date %q", ErrMalformed, date)
		}
	}

	b := &Batch{Kind: KindForecastsJSON}

	if len(raw) > 0 && raw[0] == '{' {
		if date == "" {
			return nil, ErrForecastDateless
		}
		var byItem map[string]flexFloat
		if err := json.Unmarshal(raw, &byItem); err != nil {
			return nil, fmt.Errorf("%w: decode json: %v", ErrMalformed, err)
		}
		ids := make([]string, 0, len(byItem))
		for id := range byItem {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		b.Rows = len(ids)
		for _, id := range ids {
			if strings.TrimSpace(id) == "" {
				b.Skipped++
				continue
			}
			b.Forecasts = append(b.Forecasts, domain.ForecastEntry{
				Date:           date,
				MenuItemID:     strings.TrimSpace(id),
				PredictedUnits: float64(byItem[id]),
			})
		}
		return b, nil
	}

	var docs []forecastDoc
	if err := decodeArray(bytes.NewReader(raw), &docs); err != nil {
		return nil, err
	}
	b.Rows = len(docs)
	for _, d := range docs {
		rowDate := strings.TrimSpace(d.Date)
		if rowDate == "" {
			rowDate = date
		}
		if d.MenuItemID == "" || rowDate == "" {
			b.Skipped++
			continue
		}
		if _, ok := engine.LocalMidnight(rowDate, nil); !ok {
			b.Skipped++
			continue
		}
		b.Forecasts = append(b.Forecasts, domain.ForecastEntry{
			Date:           rowDate,
			MenuItemID:     string(d.MenuItemID),
			PredictedUnits: float64(d.PredictedUnits),
			Model:          strings.TrimSpace(d.Model),
		})
	}
	return b, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
