package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/engine"
	"github.com/themagicbeanstock/backend-go/internal/repository"
)

// RecipeService answers "what do I need to order to cook N servings".
type RecipeService struct {
	repo   repository.PlanningRepository
	policy engine.Policy
	opts   Options
}

func NewRecipeService(repo repository.PlanningRepository, policy engine.Policy, opts Options) (*RecipeService, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &RecipeService{repo: repo, policy: policy, opts: opts}, nil
}

func (s *RecipeService) Calculate(ctx context.Context, accountID, recipeID string, servings float64) ([]domain.RecipeOrderLine, error) {
	accountID, err := normalizeAccount(accountID)
	if err != nil {
		return nil, err
	}

	recipe, err := s.repo.GetRecipe(ctx, accountID, recipeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	inventory, err := s.repo.ListInventory(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	lines, err := engine.CalculateRecipeOrder(*recipe, servings, inventory, s.policy)
	if err != nil {
		return nil, err
	}
	s.opts.Metrics.ObserveRecipeCalculation()
	return lines, nil
}
