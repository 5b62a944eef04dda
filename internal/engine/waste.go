package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/themagicbeanstock/backend-go/internal/domain"
)

// Evaluate computes the waste-risk figures of every item and the portfolio stats.
//
// An item is at risk when the stock it cannot consume before expiry is positive
// and it expires within policy.RiskWindowDays. Items without a usable
// expiration date are never at risk. The input slice is not modified and no
// ordering is imposed on the result.
func Evaluate(items []domain.InventoryItem, policy Policy, today time.Time) domain.RiskReport {
	enriched := make([]domain.EnrichedInventoryItem, 0, len(items))
	for _, it := range items {
		enriched = append(enriched, enrichItem(it, policy, today))
	}

	return domain.RiskReport{
		Enriched: enriched,
		Stats:    riskStats(enriched, policy),
	}
}

func enrichItem(it domain.InventoryItem, policy Policy, today time.Time) domain.EnrichedInventoryItem {
	stock := num(it.CurrentStock)
	avgDaily := num(it.AvgDailyUsage)
	price := num(it.PricePerUnitUSD)

	daysToExpire := DaysToExpire(it.EstimatedExpirationDate, today)

	var usable *float64
	excess := 0.0
	if daysToExpire != nil {
		u := avgDaily * float64(*daysToExpire)
		excess = max(0, stock-u)
		rounded := policy.round(u)
		usable = &rounded
	}

	estimatedWaste := excess * wasteRate(it.WastePctHistorical, policy)
	wasteValue := estimatedWaste * price

	atRisk := excess > policy.AtRiskEpsilon &&
		daysToExpire != nil &&
		*daysToExpire <= policy.RiskWindowDays

	return domain.EnrichedInventoryItem{
		InventoryItem:      it,
		DaysToExpire:       daysToExpire,
		UsableBeforeExpire: usable,
		ExcessAtRisk:       policy.round(excess),
		EstimatedWaste:     policy.round(estimatedWaste),
		WasteValueUSD:      policy.round(wasteValue),
		AtRisk:             atRisk,
		RiskWindowDays:     policy.RiskWindowDays,
	}
}

// wasteRate converts the historical waste percentage into a fraction.
func wasteRate(pct *float64, policy Policy) float64 {
	if pct == nil {
		return num(policy.DefaultWastePct) / 100
	}
	return num(*pct) / 100
}

func riskStats(enriched []domain.EnrichedInventoryItem, policy Policy) domain.RiskPortfolioStats {
	stats := domain.RiskPortfolioStats{TotalItems: len(enriched)}
	total := decimal.Zero

	for _, e := range enriched {
		if e.AtRisk {
			stats.AtRiskCount++
			total = total.Add(decimal.NewFromFloat(e.WasteValueUSD))
		}
		if e.DaysToExpire != nil && *e.DaysToExpire <= policy.ExpiringSoonDays {
			stats.ExpiringSoonCount++
		}
		if num(e.CurrentStock) < num(e.ReorderPoint) {
			stats.LowStockCount++
		}
	}

	stats.WasteValueUSD = policy.round(total.InexactFloat64())
	return stats
}

// SortByRisk returns a copy of items ordered at-risk first, then by soonest
// expiry (unknown expiry last), then by item name.
func SortByRisk(items []domain.EnrichedInventoryItem) []domain.EnrichedInventoryItem {
	out := make([]domain.EnrichedInventoryItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AtRisk != b.AtRisk {
			return a.AtRisk
		}
		switch {
		case a.DaysToExpire == nil && b.DaysToExpire != nil:
			return false
		case a.DaysToExpire != nil && b.DaysToExpire == nil:
			return true
		case a.DaysToExpire != nil && *a.DaysToExpire != *b.DaysToExpire:
			return *a.DaysToExpire < *b.DaysToExpire
		}
		return a.ItemName < b.ItemName
	})
	return out
}

// AtRiskByWasteValue returns only the at-risk items, highest waste value first.
func AtRiskByWasteValue(items []domain.EnrichedInventoryItem) []domain.EnrichedInventoryItem {
	out := make([]domain.EnrichedInventoryItem, 0)
	for _, e := range items {
		if e.AtRisk {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WasteValueUSD > out[j].WasteValueUSD
	})
	return out
}
