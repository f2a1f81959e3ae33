package models

import "github.com/shopspring/decimal"

type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// TradeIntent moves the tracked asset's allocation on one network toward its target.
type TradeIntent struct {
	Network         string          `json:"network"`
	DisplayName     string          `json:"display_name"`
	CurrentFraction float64         `json:"current_fraction"`
	TargetFraction  float64         `json:"target_fraction"`
	Drift           float64         `json:"drift"`
	ValueDelta      decimal.Decimal `json:"value_delta"`
	Action          Action          `json:"action"`
}

// ConversionIntent swaps a whole non-target holding into the tracked asset.
type ConversionIntent struct {
	SourceAddress      string          `json:"source_address"`
	SourceSymbol       string          `json:"source_symbol"`
	SourceNetwork      string          `json:"source_network"`
	DestinationAddress string          `json:"destination_address"`
	DestinationSymbol  string          `json:"destination_symbol"`
	DestinationNetwork string          `json:"destination_network"`
	Amount             decimal.Decimal `json:"amount"`
	Value              decimal.Decimal `json:"value"`
	Reason             string          `json:"reason"`
}
