package models

import "github.com/shopspring/decimal"

// Holding is one token balance from a portfolio snapshot.
type Holding struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
	// Price is the quoted unit price. Zero means the price is unavailable.
	Price decimal.Decimal `json:"price"`
	// ChainHint is the coarse execution family, e.g. "evm" or "svm".
	ChainHint string `json:"chain,omitempty"`
	// Network is set when the snapshot source already knows the concrete network.
	Network string `json:"network,omitempty"`
	// Label is the symbol the snapshot source reported, if any. It is never trusted
	// on its own for identifying the tracked asset.
	Label string `json:"label,omitempty"`
}

// Value is amount × price.
func (h Holding) Value() decimal.Decimal {
	return h.Amount.Mul(h.Price)
}

// Priced reports whether the holding has a usable price.
func (h Holding) Priced() bool {
	return !h.Price.IsZero()
}

// ResolvedHolding is a Holding with its canonical identity attached.
type ResolvedHolding struct {
	Holding Holding `json:"holding"`
	Symbol  string  `json:"symbol"`
	Network string  `json:"network"`
}

func (r ResolvedHolding) Value() decimal.Decimal {
	return r.Holding.Value()
}
