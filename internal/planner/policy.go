package planner

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NetworkPolicy is the target share of the tracked asset on one network.
type NetworkPolicy struct {
	Network     string
	DisplayName string
	Target      float64
}

// Policy is the immutable allocation policy a Planner works against. Targets are
// compared per network and are not required to sum to 1.
type Policy struct {
	TargetSymbol string
	// SettlementNetwork receives conversions into the tracked asset.
	SettlementNetwork string
	// QuoteSymbol is the asset rebalance trades sell into and buy from.
	QuoteSymbol   string
	Networks      []NetworkPolicy
	Threshold     float64
	MinTradeValue decimal.Decimal
}

// Validate checks the policy without touching the registry.
func (p Policy) Validate() error {
	if strings.TrimSpace(p.TargetSymbol) == "" {
		return fmt.Errorf("%w: target symbol is required", ErrInvalidPolicy)
	}
	if len(p.Networks) == 0 {
		return fmt.Errorf("%w: at least one network target is required", ErrInvalidPolicy)
	}
	if !finite(p.Threshold) || p.Threshold < 0 || p.Threshold >= 1 {
		return fmt.Errorf("%w: threshold must be in [0, 1), got %v", ErrInvalidPolicy, p.Threshold)
	}
	if p.MinTradeValue.IsNegative() {
		return fmt.Errorf("%w: minimum trade value must be non-negative, got %s", ErrInvalidPolicy, p.MinTradeValue)
	}

	seen := make(map[string]bool, len(p.Networks))
	for _, n := range p.Networks {
		key := strings.ToLower(strings.TrimSpace(n.Network))
		if key == "" {
			return fmt.Errorf("%w: network target without a network", ErrInvalidPolicy)
		}
		if seen[key] {
			return fmt.Errorf("%w: network %q listed twice", ErrInvalidPolicy, n.Network)
		}
		seen[key] = true
		if !finite(n.Target) || n.Target < 0 || n.Target > 1 {
			return fmt.Errorf("%w: target for %s must be in [0, 1], got %v", ErrInvalidPolicy, n.Network, n.Target)
		}
	}

	return nil
}

// Target returns the configured share for network, or 0 if it is not in the policy.
func (p Policy) Target(network string) float64 {
	for _, n := range p.Networks {
		if n.Network == network {
			return n.Target
		}
	}
	return 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
