package repository

import (
	"context"
	"fmt"

	"github.com/themagicbeanstock/backend-go/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Snapshot is a consistent read of everything needed to plan one date.
type Snapshot struct {
	Inventory []domain.InventoryItem
	Forecasts []domain.ForecastEntry
	Menu      []domain.MenuCatalogEntry
	Recipes   []domain.Recipe
}

// LoadPlanningSnapshot fetches the account's datasets concurrently.
// Forecasts are only loaded when date is set.
func LoadPlanningSnapshot(ctx context.Context, repo PlanningRepository, accountID, date string) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := repo.ListInventory(gctx, accountID)
		if err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		snap.Inventory = items
		return nil
	})

	if date != "" {
		g.Go(func() error {
			forecasts, err := repo.ListForecasts(gctx, accountID, date)
			if err != nil {
				return fmt.Errorf("load forecasts: %w", err)
			}
			snap.Forecasts = forecasts
			return nil
		})
	}

	g.Go(func() error {
		menu, err := repo.ListMenuCatalog(gctx, accountID)
		if err != nil {
			return fmt.Errorf("load menu catalog: %w", err)
		}
		snap.Menu = menu
		return nil
	})

	g.Go(func() error {
		recipes, err := repo.ListRecipes(gctx, accountID)
		if err != nil {
			return fmt.Errorf("load recipes: %w", err)
		}
		snap.Recipes = recipes
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
