package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/kelsos/recall-rebalance/internal/planner"
)

type policyFile struct {
	Target        string          `yaml:"target"`
	Settlement    string          `yaml:"settlement"`
	Quote         string          `yaml:"quote"`
	Threshold     *float64        `yaml:"threshold"`
	MinTradeValue string          `yaml:"min_trade_value"`
	Networks      []networkTarget `yaml:"networks"`
}

type networkTarget struct {
	Network     string  `yaml:"network"`
	DisplayName string  `yaml:"display_name"`
	Target      float64 `yaml:"target"`
}

// DefaultPolicy is the WBTC allocation the agent ships with.
func DefaultPolicy() planner.Policy {
	return planner.Policy{
		TargetSymbol:      "WBTC",
		SettlementNetwork: "ethereum",
		QuoteSymbol:       "USDC",
		Networks: []planner.NetworkPolicy{
			{Network: "ethereum", DisplayName: "Ethereum", Target: 0.40},
			{Network: "arbitrum", DisplayName: "Arbitrum", Target: 0.25},
			{Network: "optimism", DisplayName: "Optimism", Target: 0.20},
			{Network: "base", DisplayName: "Base", Target: 0.15},
		},
		Threshold:     0.05,
		MinTradeValue: decimal.NewFromInt(10),
	}
}

// LoadPolicyFile reads a YAML policy. Fields left out keep their DefaultPolicy value,
// except networks: a file that lists networks replaces the default set entirely.
func LoadPolicyFile(path string) (planner.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return planner.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return planner.Policy{}, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	policy := DefaultPolicy()
	if file.Target != "" {
		policy.TargetSymbol = file.Target
	}
	if file.Settlement != "" {
		policy.SettlementNetwork = file.Settlement
	}
	if file.Quote != "" {
		policy.QuoteSymbol = file.Quote
	}
	if file.Threshold != nil {
		policy.Threshold = *file.Threshold
	}
	if file.MinTradeValue != "" {
		v, err := decimal.NewFromString(file.MinTradeValue)
		if err != nil {
			return planner.Policy{}, fmt.Errorf("invalid min_trade_value %q: %w", file.MinTradeValue, err)
		}
		policy.MinTradeValue = v
	}
	if len(file.Networks) > 0 {
		policy.Networks = make([]planner.NetworkPolicy, 0, len(file.Networks))
		for _, n := range file.Networks {
			policy.Networks = append(policy.Networks, planner.NetworkPolicy{
				Network:     n.Network,
				DisplayName: n.DisplayName,
				Target:      n.Target,
			})
		}
	}

	return policy, policy.Validate()
}

// Policy resolves the effective policy: the file when configured, else the default,
// with threshold and dust floor overrides applied on top.
func (c *Config) Policy() (planner.Policy, error) {
	policy := DefaultPolicy()
	if c.PolicyFile != "" {
		var err error
		if policy, err = LoadPolicyFile(c.PolicyFile); err != nil {
			return planner.Policy{}, err
		}
	}

	if c.Threshold != nil {
		policy.Threshold = *c.Threshold
	}
	if c.MinTradeValue != nil {
		policy.MinTradeValue = *c.MinTradeValue
	}

	return policy, policy.Validate()
}
