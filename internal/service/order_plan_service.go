package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/themagicbeanstock/backend-go/internal/cache"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/engine"
	"github.com/themagicbeanstock/backend-go/internal/repository"
	"github.com/themagicbeanstock/backend-go/internal/storage"
)

// OrderPlanService turns a date's forecasts into an ingredient order plan.
type OrderPlanService struct {
	repo          repository.PlanningRepository
	cache         cache.PlanCache
	store         storage.ObjectStorage
	storagePrefix string
	policy        engine.Policy
	opts          Options
}

func NewOrderPlanService(
	repo repository.PlanningRepository,
	cacheImpl cache.PlanCache,
	store storage.ObjectStorage,
	storagePrefix string,
	policy engine.Policy,
	opts Options,
) (*OrderPlanService, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPlanCache()
	}
	return &OrderPlanService{
		repo:          repo,
		cache:         cacheImpl,
		store:         store,
		storagePrefix: storagePrefix,
		policy:        policy,
		opts:          opts,
	}, nil
}

// GeneratePlan builds the order plan for one forecast date. When no
// forecasts exist for the date the plan is empty and carries a message.
func (s *OrderPlanService) GeneratePlan(ctx context.Context, accountID, date string) (*domain.OrderPlan, error) {
	accountID, err := normalizeAccount(accountID)
	if err != nil {
		return nil, err
	}
	if _, ok := engine.LocalMidnight(date, s.opts.Location); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	if plan, ok, err := s.cache.GetOrderPlan(ctx, accountID, date); err == nil && ok {
		s.opts.Metrics.CacheLookup("order_plan", true)
		return plan, nil
	} else if err != nil {
		log.Warn().Err(err).Str("account", accountID).Str("date", date).Msg("order plan: cache get failed")
	}
	s.opts.Metrics.CacheLookup("order_plan", false)

	start := time.Now()
	loadCtx, cancel := s.opts.loadContext(ctx)
	snap, err := repository.LoadPlanningSnapshot(loadCtx, s.repo, accountID, date)
	cancel()
	if err != nil {
		return nil, err
	}

	if len(snap.Forecasts) == 0 {
		plan := engine.Plan(nil, nil, s.policy)
		plan.Date = date
		plan.Message = ErrNoForecastsDate.Error()
		return &plan, nil
	}

	plan := engine.PlanForecast(snap.Forecasts, snap.Menu, snap.Recipes, snap.Inventory, s.policy)
	plan.Date = date
	s.opts.Metrics.ObservePlan(time.Since(start), plan.Stats.ShortageLineCount)

	if err := s.cache.SetOrderPlan(ctx, accountID, date, &plan); err != nil {
		log.Warn().Err(err).Str("account", accountID).Str("date", date).Msg("order plan: cache set failed")
	}

	log.Info().
		Str("account", accountID).
		Str("date", date).
		Int("forecast_rows", len(snap.Forecasts)).
		Int("shortages", plan.Stats.ShortageLineCount).
		Float64("coverage_pct", plan.Stats.CoveragePct).
		Dur("elapsed", time.Since(start)).
		Msg("order plan generated")

	return &plan, nil
}

// Export is a rendered supplier order list.
type Export struct {
	Filename  string
	Data      []byte
	StoredKey string
}

var exportHeader = []string{"supplier", "item_name", "unit", "needed", "in_stock", "to_order", "price_per_unit_usd", "est_cost_usd"}

// ExportCSV renders the supplier order list of a plan as CSV. Only lines
// with something to order are included, grouped by supplier. The file is
// also published to object storage when one is configured.
func (s *OrderPlanService) ExportCSV(ctx context.Context, accountID, date string) (*Export, error) {
	accountID, err := normalizeAccount(accountID)
	if err != nil {
		return nil, err
	}

	plan, err := s.GeneratePlan(ctx, accountID, date)
	if err != nil {
		return nil, err
	}

	inventory, err := s.repo.ListInventory(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	prices := make(map[string]float64, len(inventory))
	for _, it := range inventory {
		prices[it.ItemName] = it.PricePerUnitUSD
	}

	data, err := renderSupplierCSV(plan.BySupplier, prices, s.policy.Precision)
	if err != nil {
		return nil, err
	}

	export := &Export{
		Filename: fmt.Sprintf("order_plan_%s.csv", date),
		Data:     data,
	}

	if s.store != nil {
		key := storage.ExportKey(s.storagePrefix, accountID, date)
		if err := s.store.UploadObject(ctx, key, data, "text/csv"); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("order plan: export upload failed")
		} else {
			export.StoredKey = key
		}
	}

	return export, nil
}

func renderSupplierCSV(groups []domain.SupplierGroup, prices map[string]float64, precision int) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	places := int32(precision)
	for _, g := range groups {
		supplierTotal := decimal.Zero
		for _, l := range g.Items {
			price := decimal.NewFromFloat(prices[l.ItemName])
			cost := decimal.NewFromFloat(l.ToOrder).Mul(price).Round(2)
			supplierTotal = supplierTotal.Add(cost)

			record := []string{
				g.Supplier,
				l.ItemName,
				l.Unit,
				decimal.NewFromFloat(l.Needed).StringFixed(places),
				decimal.NewFromFloat(l.InStock).StringFixed(places),
				decimal.NewFromFloat(l.ToOrder).StringFixed(places),
				price.StringFixed(2),
				cost.StringFixed(2),
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
		if err := w.Write([]string{g.Supplier, "TOTAL", "", "", "", "", "", supplierTotal.StringFixed(2)}); err != nil {
			return nil, fmt.Errorf("write csv total: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
