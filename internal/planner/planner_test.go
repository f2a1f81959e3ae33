package planner

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/recall-rebalance/internal/models"
	"github.com/kelsos/recall-rebalance/internal/registry"
)

const (
	wbtcEthereum = "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"
	wbtcArbitrum = "0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f"
	wbtcOptimism = "0x68f180fcCe6836688e9084f035309E29Bf0A2095"
	wbtcBase     = "0x236aa50979D5f3De3Bd1Eeb40E81137F22ab794b"
	wbtcSolana   = "3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh"
	usdcBase     = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	usdtEthereum = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	daiEthereum  = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	solSolana    = "So11111111111111111111111111111111111111112"
)

func holding(address, amount, price, hint string) models.Holding {
	return models.Holding{
		Address:   address,
		Amount:    decimal.RequireFromString(amount),
		Price:     decimal.RequireFromString(price),
		ChainHint: hint,
	}
}

func defaultPolicy() Policy {
	return Policy{
		TargetSymbol:      "WBTC",
		SettlementNetwork: "ethereum",
		QuoteSymbol:       "USDC",
		Networks: []NetworkPolicy{
			{Network: "ethereum", Target: 0.40},
			{Network: "arbitrum", Target: 0.25},
			{Network: "optimism", Target: 0.20},
			{Network: "base", Target: 0.15},
		},
		Threshold:     0.05,
		MinTradeValue: decimal.NewFromInt(10),
	}
}

func newPlanner(t *testing.T, policy Policy) *Planner {
	t.Helper()
	p, err := New(registry.Default(), policy)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	t.Run("normalizes networks and fills display names", func(t *testing.T) {
		policy := defaultPolicy()
		policy.SettlementNetwork = ""
		policy.Networks[0].Network = "eth"
		policy.Networks[1].Network = "42161"

		p := newPlanner(t, policy)
		got := p.Policy()

		assert.Equal(t, "ethereum", got.Networks[0].Network)
		assert.Equal(t, "Ethereum", got.Networks[0].DisplayName)
		assert.Equal(t, "arbitrum", got.Networks[1].Network)
		assert.Equal(t, "ethereum", got.SettlementNetwork)
	})

	t.Run("policy copy does not leak", func(t *testing.T) {
		p := newPlanner(t, defaultPolicy())
		got := p.Policy()
		got.Networks[0].Target = 0.99
		assert.Equal(t, 0.40, p.Policy().Networks[0].Target)
	})

	t.Run("aliases of one network are duplicates", func(t *testing.T) {
		policy := defaultPolicy()
		policy.Networks = append(policy.Networks, NetworkPolicy{Network: "eth", Target: 0.1})
		_, err := New(registry.Default(), policy)
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})

	t.Run("target must exist on the settlement network", func(t *testing.T) {
		policy := defaultPolicy()
		policy.TargetSymbol = "CBBTC"
		_, err := New(registry.Default(), policy)
		assert.ErrorIs(t, err, ErrUnknownTarget)
	})

	t.Run("registry is required", func(t *testing.T) {
		_, err := New(nil, defaultPolicy())
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"missing symbol", func(p *Policy) { p.TargetSymbol = " " }},
		{"no networks", func(p *Policy) { p.Networks = nil }},
		{"negative threshold", func(p *Policy) { p.Threshold = -0.1 }},
		{"threshold of one", func(p *Policy) { p.Threshold = 1 }},
		{"negative dust floor", func(p *Policy) { p.MinTradeValue = decimal.NewFromInt(-1) }},
		{"empty network", func(p *Policy) { p.Networks[0].Network = "" }},
		{"duplicate network", func(p *Policy) { p.Networks[1].Network = "Ethereum" }},
		{"target above one", func(p *Policy) { p.Networks[0].Target = 1.2 }},
		{"negative target", func(p *Policy) { p.Networks[0].Target = -0.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := defaultPolicy()
			tt.mutate(&policy)
			assert.ErrorIs(t, policy.Validate(), ErrInvalidPolicy)
		})
	}

	t.Run("targets need not sum to one", func(t *testing.T) {
		policy := defaultPolicy()
		policy.Networks[0].Target = 0.9
		assert.NoError(t, policy.Validate())
	})
}

func TestScenarioSingleNetworkOnTarget(t *testing.T) {
	policy := defaultPolicy()
	policy.Networks = []NetworkPolicy{{Network: "ethereum", Target: 1}}
	p := newPlanner(t, policy)

	d, err := p.AggregateDistribution([]models.Holding{holding(wbtcEthereum, "1", "60000", "evm")}, "WBTC")
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"ethereum": 1.0}, d.Fractions)
	assert.True(t, d.Total.Equal(decimal.NewFromInt(60000)))
	assert.Empty(t, p.PlanTrades(d.Fractions, d.Total))
}

func TestScenarioTwoNetworksFourTargets(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	holdings := []models.Holding{
		holding(wbtcEthereum, "0.6", "60000", "evm"),
		holding(wbtcArbitrum, "0.4", "60000", "evm"),
	}

	d, err := p.AggregateDistribution(holdings, "WBTC")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, d.Fraction("ethereum"), 1e-12)
	assert.InDelta(t, 0.4, d.Fraction("arbitrum"), 1e-12)
	assert.Zero(t, d.Fraction("optimism"))
	assert.Equal(t, []string{"ethereum", "arbitrum"}, d.Networks)

	trades := p.PlanTrades(d.Fractions, d.Total)
	require.Len(t, trades, 4)

	want := []struct {
		network string
		action  models.Action
		drift   float64
		delta   float64
	}{
		{"ethereum", models.ActionSell, 0.20, -12000},
		{"arbitrum", models.ActionSell, 0.15, -9000},
		{"optimism", models.ActionBuy, 0.20, 12000},
		{"base", models.ActionBuy, 0.15, 9000},
	}
	for i, w := range want {
		assert.Equal(t, w.network, trades[i].Network)
		assert.Equal(t, w.action, trades[i].Action)
		assert.InDelta(t, w.drift, trades[i].Drift, 1e-9)
		assert.InDelta(t, w.delta, trades[i].ValueDelta.InexactFloat64(), 1e-6)
	}
	assert.Equal(t, "Optimism", trades[2].DisplayName)
}

func TestScenarioUnpricedHoldingExcluded(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	holdings := []models.Holding{
		holding(wbtcEthereum, "1", "60000", "evm"),
		holding(wbtcArbitrum, "5", "0", "evm"),
	}

	d, err := p.AggregateDistribution(holdings, "WBTC")
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"ethereum": 1.0}, d.Fractions)
	assert.True(t, d.Total.Equal(decimal.NewFromInt(60000)))
	assert.True(t, d.TotalAmount.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 1, d.Unpriced)
}

func TestScenarioUnknownAddressIsNotTracked(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	resolved, err := p.ResolveHoldings([]models.Holding{holding("0x000000000000000000000000000000000000beef", "1", "1", "evm")})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, registry.UnknownSymbol, resolved[0].Symbol)
	assert.Equal(t, "ethereum", resolved[0].Network)

	d := aggregate(resolved, "WBTC")
	assert.Empty(t, d.Fractions)
}

func TestAggregateDistributionSumsToOne(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	rng := rand.New(rand.NewSource(42))
	addresses := []string{wbtcEthereum, wbtcArbitrum, wbtcOptimism, wbtcBase, wbtcSolana}

	for round := 0; round < 200; round++ {
		var holdings []models.Holding
		n := 1 + rng.Intn(12)
		for i := 0; i < n; i++ {
			holdings = append(holdings, models.Holding{
				Address: addresses[rng.Intn(len(addresses))],
				Amount:  decimal.NewFromFloat(rng.Float64() * 10).Round(8),
				Price:   decimal.NewFromFloat(1 + rng.Float64()*100000).Round(2),
			})
		}

		d, err := p.AggregateDistribution(holdings, "WBTC")
		require.NoError(t, err)
		if !d.Total.IsPositive() {
			continue
		}

		sum := 0.0
		for _, f := range d.Fractions {
			sum += f
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "round %d", round)
	}
}

func TestAggregateDistributionEmpty(t *testing.T) {
	p := newPlanner(t, defaultPolicy())

	tests := []struct {
		name     string
		holdings []models.Holding
	}{
		{"no holdings", nil},
		{"only other assets", []models.Holding{holding(usdcBase, "100", "1", "evm")}},
		{"zero amount", []models.Holding{holding(wbtcEthereum, "0", "60000", "evm")}},
		{"all unpriced", []models.Holding{holding(wbtcEthereum, "1", "0", "evm")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := p.AggregateDistribution(tt.holdings, "WBTC")
			require.NoError(t, err)
			assert.Empty(t, d.Fractions)
			assert.Empty(t, d.Values)
			assert.True(t, d.Total.IsZero())
			assert.Empty(t, p.PlanTrades(d.Fractions, d.Total))
		})
	}
}

func TestAggregateIgnoresMislabeledHoldings(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	mislabeled := holding(usdcBase, "1000", "1", "evm")
	mislabeled.Label = "WBTC"

	d, err := p.AggregateDistribution([]models.Holding{
		holding(wbtcEthereum, "1", "60000", "evm"),
		mislabeled,
	}, "WBTC")
	require.NoError(t, err)
	assert.Equal(t, []string{"ethereum"}, d.Networks)
}

func TestAggregateKeepsUpstreamNetworkForSharedAddress(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	onBase := holding(registry.ZeroAddress, "2", "3000", "evm")
	onBase.Network = "base"

	d, err := p.AggregateDistribution([]models.Holding{onBase}, "ETH")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"base": 1.0}, d.Fractions)
}

func TestPlanTradesFilters(t *testing.T) {
	t.Run("dust delta is never emitted", func(t *testing.T) {
		policy := defaultPolicy()
		policy.Networks = []NetworkPolicy{
			{Network: "ethereum", Target: 0.25},
			{Network: "arbitrum", Target: 0.75},
		}
		fractions := map[string]float64{"ethereum": 0.5, "arbitrum": 0.5}

		assert.Empty(t, PlanTrades(fractions, decimal.NewFromInt(40), policy))
		assert.Len(t, PlanTrades(fractions, decimal.NewFromInt(41), policy), 2)
	})

	t.Run("zero threshold with exact match", func(t *testing.T) {
		policy := defaultPolicy()
		policy.Threshold = 0
		policy.MinTradeValue = decimal.Zero
		policy.Networks = []NetworkPolicy{{Network: "ethereum", Target: 1}}

		assert.Empty(t, PlanTrades(map[string]float64{"ethereum": 1}, decimal.NewFromInt(1000), policy))
	})

	t.Run("drift equal to threshold", func(t *testing.T) {
		policy := defaultPolicy()
		policy.Threshold = 0.25
		policy.Networks = []NetworkPolicy{{Network: "ethereum", Target: 0.25}}

		assert.Empty(t, PlanTrades(map[string]float64{"ethereum": 0.5}, decimal.NewFromInt(100000), policy))
	})

	t.Run("missing display name falls back to id", func(t *testing.T) {
		policy := defaultPolicy()
		policy.Networks = []NetworkPolicy{{Network: "linea", Target: 0.5}}

		trades := PlanTrades(map[string]float64{}, decimal.NewFromInt(1000), policy)
		require.Len(t, trades, 1)
		assert.Equal(t, "linea", trades[0].DisplayName)
		assert.Equal(t, models.ActionBuy, trades[0].Action)
	})
}

func TestPlanTradesIsIdempotent(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	holdings := []models.Holding{
		holding(wbtcEthereum, "0.3", "61000", "evm"),
		holding(wbtcBase, "0.5", "61000", "evm"),
		holding(wbtcOptimism, "0.05", "61000", "evm"),
	}

	encode := func() []byte {
		d, err := p.AggregateDistribution(holdings, "WBTC")
		require.NoError(t, err)
		out, err := json.Marshal(p.PlanTrades(d.Fractions, d.Total))
		require.NoError(t, err)
		return out
	}

	first := encode()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, encode())
	}
}

func TestInvalidHoldingData(t *testing.T) {
	p := newPlanner(t, defaultPolicy())

	tests := []struct {
		name  string
		bad   models.Holding
		field string
	}{
		{"missing address", holding("  ", "1", "1", "evm"), "address"},
		{"negative amount", holding(wbtcEthereum, "-1", "1", "evm"), "amount"},
		{"negative price", holding(wbtcEthereum, "1", "-1", "evm"), "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holdings := []models.Holding{holding(wbtcArbitrum, "1", "1", "evm"), tt.bad}

			_, err := p.Plan(holdings)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidHolding)

			var invalid *InvalidHoldingError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, 1, invalid.Index)
			assert.Equal(t, tt.field, invalid.Field)

			_, err = p.AggregateDistribution(holdings, "WBTC")
			assert.ErrorIs(t, err, ErrInvalidHolding)
			_, err = p.ConvertToTarget(holdings, "WBTC", "ethereum")
			assert.ErrorIs(t, err, ErrInvalidHolding)
		})
	}
}

func TestConvertToTarget(t *testing.T) {
	p := newPlanner(t, defaultPolicy())

	labeledTarget := holding("0x00000000000000000000000000000000000c0ffe", "1", "60000", "evm")
	labeledTarget.Label = "wbtc"
	unpriced := holding("0x0000000000000000000000000000000000000bad", "100", "0", "evm")
	unpriced.Label = "PEPE"

	holdings := []models.Holding{
		holding(usdcBase, "500", "1", "evm"),
		holding(wbtcArbitrum, "1", "60000", "evm"),
		holding(usdtEthereum, "5", "1", "evm"),
		holding(daiEthereum, "0", "1", "evm"),
		labeledTarget,
		unpriced,
		holding(solSolana, "1", "150", "svm"),
		holding(usdtEthereum, "10", "1", "evm"),
	}

	intents, err := p.ConvertToTarget(holdings, "WBTC", "eth")
	require.NoError(t, err)
	require.Len(t, intents, 3)

	assert.Equal(t, usdcBase, intents[0].SourceAddress)
	assert.Equal(t, "USDC", intents[0].SourceSymbol)
	assert.Equal(t, "base", intents[0].SourceNetwork)
	assert.Equal(t, wbtcEthereum, intents[0].DestinationAddress)
	assert.Equal(t, "ethereum", intents[0].DestinationNetwork)
	assert.True(t, intents[0].Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "Convert USDC on Base to WBTC on Ethereum", intents[0].Reason)

	assert.Equal(t, "SOL", intents[1].SourceSymbol)
	assert.Equal(t, "solana", intents[1].SourceNetwork)

	// the dust floor is inclusive
	assert.Equal(t, "USDT", intents[2].SourceSymbol)
	assert.True(t, intents[2].Value.Equal(decimal.NewFromInt(10)))
}

func TestConvertToTargetUnknownDestination(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	_, err := p.ConvertToTarget([]models.Holding{holding(usdcBase, "500", "1", "evm")}, "WBTC", "linea")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestPlan(t *testing.T) {
	p := newPlanner(t, defaultPolicy())
	holdings := []models.Holding{
		holding(wbtcEthereum, "0.6", "60000", "evm"),
		holding(wbtcArbitrum, "0.4", "60000", "evm"),
		holding(usdcBase, "250", "1", "evm"),
	}

	plan, err := p.Plan(holdings)
	require.NoError(t, err)

	assert.Len(t, plan.Holdings, 3)
	require.Len(t, plan.Conversions, 1)
	assert.Equal(t, "USDC", plan.Conversions[0].SourceSymbol)
	assert.True(t, plan.Distribution.Total.Equal(decimal.NewFromInt(60000)))
	assert.Len(t, plan.Trades, 4)
	assert.True(t, plan.PortfolioValue.Equal(decimal.NewFromInt(60250)))
}
