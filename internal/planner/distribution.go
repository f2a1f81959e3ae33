package planner

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kelsos/recall-rebalance/internal/models"
)

// Distribution is the tracked asset's value split across networks.
type Distribution struct {
	Symbol string
	// Fractions maps network to its share of Total. Empty when Total is zero.
	Fractions map[string]float64
	Values    map[string]decimal.Decimal
	// Networks lists the keys of Values in first-seen snapshot order.
	Networks []string
	Total    decimal.Decimal
	// TotalAmount includes unpriced holdings; Total does not.
	TotalAmount decimal.Decimal
	// Unpriced counts holdings of the asset left out for lack of a price.
	Unpriced int
}

// Fraction returns the share of network, zero when it holds none of the asset.
func (d Distribution) Fraction(network string) float64 {
	return d.Fractions[network]
}

// AggregateDistribution sums the value of symbol per network. Holdings count only when
// the registry identifies their address as symbol; the snapshot's own label is ignored.
func (p *Planner) AggregateDistribution(holdings []models.Holding, symbol string) (Distribution, error) {
	resolved, err := p.ResolveHoldings(holdings)
	if err != nil {
		return Distribution{}, err
	}
	return aggregate(resolved, symbol), nil
}

func aggregate(resolved []models.ResolvedHolding, symbol string) Distribution {
	d := Distribution{
		Symbol:      symbol,
		Fractions:   make(map[string]float64),
		Values:      make(map[string]decimal.Decimal),
		Total:       decimal.Zero,
		TotalAmount: decimal.Zero,
	}

	for _, rh := range resolved {
		if !strings.EqualFold(rh.Symbol, symbol) {
			continue
		}
		d.TotalAmount = d.TotalAmount.Add(rh.Holding.Amount)

		// a zero price means unknown, not worthless
		if !rh.Holding.Priced() {
			d.Unpriced++
			continue
		}

		value := rh.Value()
		if value.IsZero() {
			continue
		}
		if _, seen := d.Values[rh.Network]; !seen {
			d.Networks = append(d.Networks, rh.Network)
			d.Values[rh.Network] = decimal.Zero
		}
		d.Values[rh.Network] = d.Values[rh.Network].Add(value)
		d.Total = d.Total.Add(value)
	}

	if !d.Total.IsPositive() {
		d.Values = make(map[string]decimal.Decimal)
		d.Networks = nil
		return d
	}

	for _, network := range d.Networks {
		d.Fractions[network] = d.Values[network].Div(d.Total).InexactFloat64()
	}
	return d
}
