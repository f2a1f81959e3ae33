package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/kelsos/recall-rebalance/internal/client"
	"github.com/kelsos/recall-rebalance/internal/logger"
	"github.com/kelsos/recall-rebalance/internal/registry"
)

const pricePath = "$.price"

// PriceService quotes unit prices. A zero price means the price is unavailable.
type PriceService struct {
	client   *client.APIClient
	registry *registry.Registry
}

// NewPriceService creates a new price service
func NewPriceService(client *client.APIClient, reg *registry.Registry) *PriceService {
	return &PriceService{
		client:   client,
		registry: reg,
	}
}

// GetPrice returns the unit price of address on network, or zero when no quote is available.
func (s *PriceService) GetPrice(ctx context.Context, address, network string) decimal.Decimal {
	price, err := s.quote(ctx, address, network)
	if err != nil {
		logger.Warn("No price for %s on %s: %v", address, network, err)
		return decimal.Zero
	}
	return price
}

func (s *PriceService) quote(ctx context.Context, address, network string) (decimal.Decimal, error) {
	chain := s.registry.Family(network)
	if chain == "" {
		chain = "evm"
	}
	endpoint := client.BuildURLWithParams("/price", map[string]string{
		"token":         address,
		"chain":         chain,
		"specificChain": s.registry.APIName(network),
	})

	var jobj any
	if err := s.client.Get(ctx, endpoint, &jobj); err != nil {
		return decimal.Zero, err
	}

	jval, err := jsonpath.Get(pricePath, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error reading %s: %w", pricePath, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	var price decimal.Decimal
	switch v := jval.(type) {
	case float64:
		price = decimal.NewFromFloat(v)
	case string:
		if price, err = decimal.NewFromString(strings.TrimSpace(v)); err != nil {
			return decimal.Zero, fmt.Errorf("price %q is not a number: %w", v, err)
		}
	case nil:
		return decimal.Zero, fmt.Errorf("price is null")
	default:
		return decimal.Zero, fmt.Errorf("unexpected price type %T", jval)
	}

	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive price %s", price)
	}
	return price, nil
}
