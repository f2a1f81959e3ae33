package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := Default()

	tests := []struct {
		name        string
		address     string
		hint        string
		wantSymbol  string
		wantNetwork string
	}{
		{"registered address", wbtcEthereum, "evm", "WBTC", "ethereum"},
		{"case insensitive", "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", "", "WBTC", "ethereum"},
		{"non evm address", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "svm", "USDC", "solana"},
		{"shared address resolves to first declaration", wethOpStack, "evm", "WETH", "optimism"},
		{"native coin with family hint", ZeroAddress, "evm", "ETH", "ethereum"},
		{"native coin with network hint", ZeroAddress, "arbitrum", "ETH", "arbitrum"},
		{"native coin without hint", ZeroAddress, "", "ETH", "ethereum"},
		{"unknown evm address", "0x000000000000000000000000000000000000dead", "evm", UnknownSymbol, "ethereum"},
		{"unknown address with svm hint", "UnknownMint1111111111111111111111111111111", "svm", UnknownSymbol, "solana"},
		{"unknown address with solana hint", "UnknownMint1111111111111111111111111111111", "Solana", UnknownSymbol, "solana"},
		{"unknown address with unknown family", "cosmos1abc", "cosmos", UnknownSymbol, UnknownNetwork},
		{"unknown address without hint", "0x1234", "", UnknownSymbol, UnknownNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbol, network := r.Resolve(tt.address, tt.hint)
			assert.Equal(t, tt.wantSymbol, symbol)
			assert.Equal(t, tt.wantNetwork, network)
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	r := Default()
	inputs := [][2]string{
		{wbtcArbitrum, "evm"},
		{wethOpStack, "evm"},
		{ZeroAddress, "evm"},
		{"0xfeed", "evm"},
		{"0xfeed", "svm"},
	}

	for _, in := range inputs {
		firstSymbol, firstNetwork := r.Resolve(in[0], in[1])
		for i := 0; i < 10; i++ {
			symbol, network := r.Resolve(in[0], in[1])
			assert.Equal(t, firstSymbol, symbol)
			assert.Equal(t, firstNetwork, network)
		}
	}
}

func TestResolveOn(t *testing.T) {
	r := Default()

	// the registry agrees WETH lives at this address on base
	assert.Equal(t, Identity{Symbol: "WETH", Network: "base"}, r.ResolveOn(wethOpStack, "evm", "base"))
	// but not on arbitrum, so the registry wins
	assert.Equal(t, Identity{Symbol: "WETH", Network: "optimism"}, r.ResolveOn(wethOpStack, "evm", "arbitrum"))
	// venue aliases are normalized
	assert.Equal(t, Identity{Symbol: "WBTC", Network: "ethereum"}, r.ResolveOn(wbtcEthereum, "evm", "eth"))
	// unknown tokens keep the upstream network rather than a guess
	assert.Equal(t, Identity{Symbol: UnknownSymbol, Network: "arbitrum"}, r.ResolveOn("0xfeed", "evm", "arb"))
	// no upstream network behaves like Resolve
	assert.Equal(t, Identity{Symbol: "WBTC", Network: "arbitrum"}, r.ResolveOn(wbtcArbitrum, "evm", ""))
}

func TestGuessNetwork(t *testing.T) {
	r := Default()

	assert.Equal(t, "ethereum", r.GuessNetwork("EVM"))
	assert.Equal(t, "ethereum", r.GuessNetwork("evm-compatible"))
	assert.Equal(t, "solana", r.GuessNetwork("svm"))
	assert.Equal(t, "optimism", r.GuessNetwork("op"))
	assert.Equal(t, "polygon", r.GuessNetwork("137"))
	assert.Equal(t, UnknownNetwork, r.GuessNetwork("bitcoin"))
	assert.Equal(t, UnknownNetwork, r.GuessNetwork("  "))
}

func TestFirstDeclaredWinsForSharedAddress(t *testing.T) {
	r := MustNew(Definition{Assets: []Asset{
		{Symbol: "DAI", Addresses: []AssetAddress{
			{Network: "optimism", Address: "0xDA10"},
			{Network: "arbitrum", Address: "0xda10"},
		}},
	}})

	symbol, network := r.Resolve("0xDA10", "")
	assert.Equal(t, "DAI", symbol)
	assert.Equal(t, "optimism", network)

	address, ok := r.Address("DAI", "arbitrum")
	assert.True(t, ok)
	assert.Equal(t, "0xda10", address)
}
