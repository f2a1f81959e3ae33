package models

import "github.com/shopspring/decimal"

// PortfolioToken is one row of the venue's portfolio response.
type PortfolioToken struct {
	Token         string          `json:"token"`
	Amount        decimal.Decimal `json:"amount"`
	Price         decimal.Decimal `json:"price"`
	Value         decimal.Decimal `json:"value"`
	Chain         string          `json:"chain"`
	SpecificChain string          `json:"specificChain"`
	Symbol        string          `json:"symbol"`
}

// PortfolioResponse is the body of GET /api/agent/portfolio.
type PortfolioResponse struct {
	APIStatus
	AgentID    string           `json:"agentId"`
	TotalValue decimal.Decimal  `json:"totalValue"`
	Tokens     []PortfolioToken `json:"tokens"`
}

// Snapshot is a freshly fetched portfolio turned into holdings.
type Snapshot struct {
	Holdings   []Holding
	TotalValue decimal.Decimal
}
