// Package planner turns a portfolio snapshot into a per-network distribution of the
// tracked asset and the trades that bring it back within policy.
//
// Everything here is a pure function of its inputs: no I/O, no clocks, no globals.
// Output order follows the registry, the policy and the snapshot, in that order of
// precedence, so identical inputs always give identical plans.
package planner

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kelsos/recall-rebalance/internal/models"
	"github.com/kelsos/recall-rebalance/internal/registry"
)

// Planner binds a registry and a policy.
type Planner struct {
	registry *registry.Registry
	policy   Policy
}

// Plan is everything one planning cycle derives from a snapshot.
type Plan struct {
	Holdings       []models.ResolvedHolding
	Conversions    []models.ConversionIntent
	Distribution   Distribution
	Trades         []models.TradeIntent
	PortfolioValue decimal.Decimal
}

// New validates policy and normalizes its network ids against reg.
func New(reg *registry.Registry, policy Policy) (*Planner, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidPolicy)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	normalized := policy
	normalized.TargetSymbol = strings.TrimSpace(policy.TargetSymbol)
	normalized.Networks = make([]NetworkPolicy, 0, len(policy.Networks))
	seen := make(map[string]bool, len(policy.Networks))
	for _, n := range policy.Networks {
		id := reg.NormalizeNetwork(n.Network)
		if seen[id] {
			return nil, fmt.Errorf("%w: network %q listed twice", ErrInvalidPolicy, id)
		}
		seen[id] = true
		if n.DisplayName == "" {
			n.DisplayName = reg.DisplayName(id)
		}
		n.Network = id
		normalized.Networks = append(normalized.Networks, n)
	}

	if normalized.SettlementNetwork == "" {
		normalized.SettlementNetwork = normalized.Networks[0].Network
	} else {
		normalized.SettlementNetwork = reg.NormalizeNetwork(normalized.SettlementNetwork)
	}
	if _, ok := reg.Address(normalized.TargetSymbol, normalized.SettlementNetwork); !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownTarget, normalized.TargetSymbol, normalized.SettlementNetwork)
	}

	return &Planner{registry: reg, policy: normalized}, nil
}

// Policy returns a copy of the normalized policy.
func (p *Planner) Policy() Policy {
	policy := p.policy
	policy.Networks = append([]NetworkPolicy(nil), p.policy.Networks...)
	return policy
}

func (p *Planner) Registry() *registry.Registry {
	return p.registry
}

// ResolveHoldings validates the snapshot and attaches canonical identities in order.
func (p *Planner) ResolveHoldings(holdings []models.Holding) ([]models.ResolvedHolding, error) {
	if err := ValidateHoldings(holdings); err != nil {
		return nil, err
	}

	resolved := make([]models.ResolvedHolding, 0, len(holdings))
	for _, h := range holdings {
		id := p.registry.ResolveOn(h.Address, h.ChainHint, h.Network)
		resolved = append(resolved, models.ResolvedHolding{
			Holding: h,
			Symbol:  id.Symbol,
			Network: id.Network,
		})
	}
	return resolved, nil
}

// PlanTrades applies the planner's policy to a distribution.
func (p *Planner) PlanTrades(fractions map[string]float64, totalValue decimal.Decimal) []models.TradeIntent {
	return PlanTrades(fractions, totalValue, p.policy)
}

// Plan runs a full planning cycle over one snapshot: conversions of non-target
// holdings, the current distribution of the tracked asset, and rebalance trades.
// Conversions and trades are both planned against the same snapshot; a caller that
// executes the conversions should fetch a fresh snapshot before rebalancing.
func (p *Planner) Plan(holdings []models.Holding) (Plan, error) {
	resolved, err := p.ResolveHoldings(holdings)
	if err != nil {
		return Plan{}, err
	}

	conversions, err := p.convert(resolved, p.policy.TargetSymbol, p.policy.SettlementNetwork)
	if err != nil {
		return Plan{}, err
	}

	distribution := aggregate(resolved, p.policy.TargetSymbol)

	portfolioValue := decimal.Zero
	for _, rh := range resolved {
		if rh.Holding.Priced() {
			portfolioValue = portfolioValue.Add(rh.Value())
		}
	}

	return Plan{
		Holdings:       resolved,
		Conversions:    conversions,
		Distribution:   distribution,
		Trades:         PlanTrades(distribution.Fractions, distribution.Total, p.policy),
		PortfolioValue: portfolioValue,
	}, nil
}
