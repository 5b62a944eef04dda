package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/engine"
	"github.com/themagicbeanstock/backend-go/internal/repository"
)

// ForecastService lists the stored demand forecasts of one date.
type ForecastService struct {
	repo repository.PlanningRepository
	opts Options
}

func NewForecastService(repo repository.PlanningRepository, opts Options) *ForecastService {
	return &ForecastService{repo: repo, opts: opts}
}

func (s *ForecastService) ListForecasts(ctx context.Context, accountID, date string) (*domain.ForecastList, error) {
	accountID, err := normalizeAccount(accountID)
	if err != nil {
		return nil, err
	}
	if _, ok := engine.LocalMidnight(date, s.opts.Location); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	loadCtx, cancel := s.opts.loadContext(ctx)
	defer cancel()
	forecasts, err := s.repo.ListForecasts(loadCtx, accountID, date)
	if err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}

	sort.SliceStable(forecasts, func(i, j int) bool {
		return forecasts[i].MenuItemID < forecasts[j].MenuItemID
	})

	list := &domain.ForecastList{
		Date:      date,
		Count:     len(forecasts),
		Forecasts: forecasts,
	}
	if len(forecasts) == 0 {
		list.Message = ErrNoForecastsDate.Error()
	}
	return list, nil
}
