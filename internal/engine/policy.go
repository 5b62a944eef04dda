package engine

import (
	"errors"
	"fmt"
	"math"
)

// Policy holds the tunable constants of the risk and planning calculations.
// Every entry point takes a Policy explicitly; DefaultPolicy returns the values
// used by the dashboard screens.
type Policy struct {
	// RiskWindowDays is the days-to-expiry threshold for flagging an item at risk.
	RiskWindowDays int
	// ExpiringSoonDays is the days-to-expiry threshold for the expiring-soon count.
	ExpiringSoonDays int
	// DefaultWastePct applies when an item has no historical waste percentage.
	DefaultWastePct float64
	// Precision is the number of decimals emitted quantities are rounded to.
	Precision int
	// AtRiskEpsilon absorbs floating point noise in the excess-at-risk comparison.
	AtRiskEpsilon float64
	// UnknownSupplier labels order lines whose inventory record has no supplier.
	UnknownSupplier string
}

const (
	DefaultRiskWindowDays   = 7
	DefaultExpiringSoonDays = 3
	DefaultWastePct         = 10.0
	DefaultPrecision        = 3
	DefaultAtRiskEpsilon    = 0.0001
	DefaultUnknownSupplier  = "Unknown"
)

// DefaultPolicy returns the standard policy.
func DefaultPolicy() Policy {
	return Policy{
		RiskWindowDays:   DefaultRiskWindowDays,
		ExpiringSoonDays: DefaultExpiringSoonDays,
		DefaultWastePct:  DefaultWastePct,
		Precision:        DefaultPrecision,
		AtRiskEpsilon:    DefaultAtRiskEpsilon,
		UnknownSupplier:  DefaultUnknownSupplier,
	}
}

// ErrInvalidPolicy is returned by Validate.
var ErrInvalidPolicy = errors.New("invalid engine policy")

// Validate rejects policies no caller could have meant.
func (p Policy) Validate() error {
	if p.RiskWindowDays < 0 {
		return fmt.Errorf("%w: risk window must be >= 0, got %d", ErrInvalidPolicy, p.RiskWindowDays)
	}
	if p.ExpiringSoonDays < 0 {
		return fmt.Errorf("%w: expiring-soon window must be >= 0, got %d", ErrInvalidPolicy, p.ExpiringSoonDays)
	}
	if p.Precision < 0 {
		return fmt.Errorf("%w: precision must be >= 0, got %d", ErrInvalidPolicy, p.Precision)
	}
	if !isFinite(p.DefaultWastePct) || p.DefaultWastePct < 0 {
		return fmt.Errorf("%w: default waste pct must be a non-negative number, got %v", ErrInvalidPolicy, p.DefaultWastePct)
	}
	if !isFinite(p.AtRiskEpsilon) || p.AtRiskEpsilon < 0 {
		return fmt.Errorf("%w: at-risk epsilon must be a non-negative number, got %v", ErrInvalidPolicy, p.AtRiskEpsilon)
	}
	return nil
}

// WithRiskWindow returns a copy of p using the given risk window.
func (p Policy) WithRiskWindow(days int) Policy {
	p.RiskWindowDays = days
	return p
}

func (p Policy) round(x float64) float64 {
	return RoundTo(x, p.Precision)
}

func (p Policy) supplierLabel(s string) string {
	if s == "" {
		if p.UnknownSupplier == "" {
			return DefaultUnknownSupplier
		}
		return p.UnknownSupplier
	}
	return s
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
