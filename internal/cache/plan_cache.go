package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/themagicbeanstock/backend-go/internal/config"
	"github.com/themagicbeanstock/backend-go/internal/domain"
)

const (
	orderPlanKeyPrefix  = "beanstock:plan"
	riskReportKeyPrefix = "beanstock:risk"
)

// PlanCache stores computed order plans and risk reports per account.
// Entries are dropped whenever the account uploads new data.
type PlanCache interface {
	GetOrderPlan(ctx context.Context, accountID, date string) (*domain.OrderPlan, bool, error)
	SetOrderPlan(ctx context.Context, accountID, date string, plan *domain.OrderPlan) error
	GetRiskReport(ctx context.Context, accountID, asOf string, window int) (*domain.RiskReport, bool, error)
	SetRiskReport(ctx context.Context, accountID, asOf string, window int, report *domain.RiskReport) error
	InvalidateAccount(ctx context.Context, accountID string) error
}

type redisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPlanCache struct{}

func NewPlanCache(cfg config.CacheConfig) (PlanCache, error) {
	if !cfg.Enabled {
		return &noopPlanCache{}, nil
	}

	client, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPlanCache{
		client: client,
		ttl:    planTTL(cfg),
	}, nil
}

func NewNoopPlanCache() PlanCache {
	return &noopPlanCache{}
}

func (c *redisPlanCache) GetOrderPlan(ctx context.Context, accountID, date string) (*domain.OrderPlan, bool, error) {
	var plan domain.OrderPlan
	ok, err := getJSON(ctx, c.client, orderPlanKey(accountID, date), &plan)
	if err != nil || !ok {
		return nil, false, err
	}
	return &plan, true, nil
}

func (c *redisPlanCache) SetOrderPlan(ctx context.Context, accountID, date string, plan *domain.OrderPlan) error {
	return setJSON(ctx, c.client, orderPlanKey(accountID, date), plan, c.ttl)
}

func (c *redisPlanCache) GetRiskReport(ctx context.Context, accountID, asOf string, window int) (*domain.RiskReport, bool, error) {
	var report domain.RiskReport
	ok, err := getJSON(ctx, c.client, riskReportKey(accountID, asOf, window), &report)
	if err != nil || !ok {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisPlanCache) SetRiskReport(ctx context.Context, accountID, asOf string, window int, report *domain.RiskReport) error {
	return setJSON(ctx, c.client, riskReportKey(accountID, asOf, window), report, c.ttl)
}

func (c *redisPlanCache) InvalidateAccount(ctx context.Context, accountID string) error {
	seg := accountSegment(accountID)
	for _, prefix := range []string{orderPlanKeyPrefix, riskReportKeyPrefix} {
		if err := deleteKeysWithPrefix(ctx, c.client, prefix+":"+seg+":", scanBatchSize); err != nil {
			return err
		}
	}
	return nil
}

func (n *noopPlanCache) GetOrderPlan(ctx context.Context, accountID, date string) (*domain.OrderPlan, bool, error) {
	return nil, false, nil
}

func (n *noopPlanCache) SetOrderPlan(ctx context.Context, accountID, date string, plan *domain.OrderPlan) error {
	return nil
}

func (n *noopPlanCache) GetRiskReport(ctx context.Context, accountID, asOf string, window int) (*domain.RiskReport, bool, error) {
	return nil, false, nil
}

func (n *noopPlanCache) SetRiskReport(ctx context.Context, accountID, asOf string, window int, report *domain.RiskReport) error {
	return nil
}

func (n *noopPlanCache) InvalidateAccount(ctx context.Context, accountID string) error {
	return nil
}

func orderPlanKey(accountID, date string) string {
	return fmt.Sprintf("%s:%s:%s", orderPlanKeyPrefix, accountSegment(accountID), date)
}

func riskReportKey(accountID, asOf string, window int) string {
	return fmt.Sprintf("%s:%s:%s:w%d", riskReportKeyPrefix, accountSegment(accountID), asOf, window)
}
