package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/cache"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/engine"
	"github.com/themagicbeanstock/backend-go/internal/repository"
)

// RiskService evaluates an account's inventory for waste risk.
type RiskService struct {
	repo   repository.PlanningRepository
	cache  cache.PlanCache
	policy engine.Policy
	opts   Options
}

func NewRiskService(repo repository.PlanningRepository, cacheImpl cache.PlanCache, policy engine.Policy, opts Options) (*RiskService, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPlanCache()
	}
	return &RiskService{repo: repo, cache: cacheImpl, policy: policy, opts: opts}, nil
}

// Report evaluates the inventory as of today. A window of 0 uses the policy
// default. Items are ordered at-risk first, then by soonest expiry.
func (s *RiskService) Report(ctx context.Context, accountID string, window int) (*domain.RiskReport, error) {
	accountID, err := normalizeAccount(accountID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policyFor(window)
	if err != nil {
		return nil, err
	}

	today := s.opts.today()
	asOf := today.Format(engine.DateLayout)

	if report, ok, err := s.cache.GetRiskReport(ctx, accountID, asOf, policy.RiskWindowDays); err == nil && ok {
		s.opts.Metrics.CacheLookup("risk_report", true)
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Str("account", accountID).Msg("risk: cache get report failed")
	}
	s.opts.Metrics.CacheLookup("risk_report", false)

	loadCtx, cancel := s.opts.loadContext(ctx)
	items, err := s.repo.ListInventory(loadCtx, accountID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	report := engine.Evaluate(items, policy, today)
	report.Enriched = engine.SortByRisk(report.Enriched)
	s.opts.Metrics.ObserveRisk(report.Stats.AtRiskCount)

	if err := s.cache.SetRiskReport(ctx, accountID, asOf, policy.RiskWindowDays, &report); err != nil {
		log.Warn().Err(err).Str("account", accountID).Msg("risk: cache set report failed")
	}

	log.Debug().
		Str("account", accountID).
		Int("items", report.Stats.TotalItems).
		Int("at_risk", report.Stats.AtRiskCount).
		Float64("waste_value_usd", report.Stats.WasteValueUSD).
		Msg("risk report computed")

	return &report, nil
}

// Sustainability lists only the at-risk items, largest waste value first.
func (s *RiskService) Sustainability(ctx context.Context, accountID string, window int) (*domain.SustainabilityReport, error) {
	report, err := s.Report(ctx, accountID, window)
	if err != nil {
		return nil, err
	}

	return &domain.SustainabilityReport{
		Items: engine.AtRiskByWasteValue(report.Enriched),
		Stats: domain.SustainabilityStats{
			TotalItems:        report.Stats.TotalItems,
			AtRiskCount:       report.Stats.AtRiskCount,
			ExpiringSoonCount: report.Stats.ExpiringSoonCount,
			WasteValueUSD:     report.Stats.WasteValueUSD,
		},
	}, nil
}

func (s *RiskService) policyFor(window int) (engine.Policy, error) {
	if window == 0 {
		return s.policy, nil
	}
	policy := s.policy.WithRiskWindow(window)
	if err := policy.Validate(); err != nil {
		return engine.Policy{}, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	return policy, nil
}
