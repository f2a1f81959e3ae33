package planner

import (
	"fmt"
	"strings"

	"github.com/kelsos/recall-rebalance/internal/models"
	"github.com/kelsos/recall-rebalance/internal/registry"
)

// ConvertToTarget plans a full-balance swap into symbol on network for every holding
// that is not already symbol. Dust, empty and unpriced holdings are skipped.
func (p *Planner) ConvertToTarget(holdings []models.Holding, symbol, network string) ([]models.ConversionIntent, error) {
	resolved, err := p.ResolveHoldings(holdings)
	if err != nil {
		return nil, err
	}
	return p.convert(resolved, symbol, p.registry.NormalizeNetwork(network))
}

func (p *Planner) convert(resolved []models.ResolvedHolding, symbol, network string) ([]models.ConversionIntent, error) {
	destination, ok := p.registry.Address(symbol, network)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownTarget, symbol, network)
	}

	intents := make([]models.ConversionIntent, 0)
	for _, rh := range resolved {
		h := rh.Holding
		if p.isTarget(rh, symbol) {
			continue
		}
		if !h.Amount.IsPositive() || !h.Priced() {
			continue
		}
		value := h.Value()
		if value.LessThan(p.policy.MinTradeValue) {
			continue
		}

		sourceSymbol := rh.Symbol
		if sourceSymbol == "" || sourceSymbol == registry.UnknownSymbol {
			if h.Label != "" {
				sourceSymbol = h.Label
			}
		}

		intents = append(intents, models.ConversionIntent{
			SourceAddress:      h.Address,
			SourceSymbol:       sourceSymbol,
			SourceNetwork:      rh.Network,
			DestinationAddress: destination,
			DestinationSymbol:  symbol,
			DestinationNetwork: network,
			Amount:             h.Amount,
			Value:              value,
			Reason: fmt.Sprintf("Convert %s on %s to %s on %s",
				sourceSymbol, p.registry.DisplayName(rh.Network), symbol, p.registry.DisplayName(network)),
		})
	}
	return intents, nil
}

// isTarget accepts either a registry match or the upstream label.
func (p *Planner) isTarget(rh models.ResolvedHolding, symbol string) bool {
	return p.registry.IsAsset(rh.Holding.Address, symbol) ||
		strings.EqualFold(rh.Symbol, symbol) ||
		strings.EqualFold(strings.TrimSpace(rh.Holding.Label), symbol)
}
