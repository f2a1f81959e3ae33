package models

import "github.com/shopspring/decimal"

// TradeRequest is the body of POST /api/trade/execute.
type TradeRequest struct {
	FromToken         string `json:"fromToken"`
	ToToken           string `json:"toToken"`
	Amount            string `json:"amount"`
	FromChain         string `json:"fromChain"`
	ToChain           string `json:"toChain"`
	FromSpecificChain string `json:"fromSpecificChain"`
	ToSpecificChain   string `json:"toSpecificChain"`
	Reason            string `json:"reason"`
}

type TradeTransaction struct {
	ID         string          `json:"id"`
	FromToken  string          `json:"fromToken"`
	ToToken    string          `json:"toToken"`
	FromAmount decimal.Decimal `json:"fromAmount"`
	ToAmount   decimal.Decimal `json:"toAmount"`
	Price      decimal.Decimal `json:"price"`
	Success    bool            `json:"success"`
	Timestamp  string          `json:"timestamp"`
}

type TradeResponse struct {
	APIStatus
	Transaction TradeTransaction `json:"transaction"`
}
