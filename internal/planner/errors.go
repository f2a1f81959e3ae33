package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kelsos/recall-rebalance/internal/models"
)

var (
	ErrInvalidHolding = errors.New("invalid holding data")
	ErrInvalidPolicy  = errors.New("invalid policy")
	ErrUnknownTarget  = errors.New("target asset is not registered on network")
)

// InvalidHoldingError pinpoints the snapshot row that aborted planning.
type InvalidHoldingError struct {
	Index   int
	Address string
	Field   string
	Reason  string
}

func (e *InvalidHoldingError) Error() string {
	return fmt.Sprintf("%s: holding %d (%q) %s %s", ErrInvalidHolding, e.Index, e.Address, e.Field, e.Reason)
}

func (e *InvalidHoldingError) Unwrap() error {
	return ErrInvalidHolding
}

// ValidateHoldings rejects the whole snapshot on the first corrupt row.
func ValidateHoldings(holdings []models.Holding) error {
	for i, h := range holdings {
		switch {
		case strings.TrimSpace(h.Address) == "":
			return &InvalidHoldingError{Index: i, Field: "address", Reason: "is required"}
		case h.Amount.IsNegative():
			return &InvalidHoldingError{Index: i, Address: h.Address, Field: "amount", Reason: "is negative: " + h.Amount.String()}
		case h.Price.IsNegative():
			return &InvalidHoldingError{Index: i, Address: h.Address, Field: "price", Reason: "is negative: " + h.Price.String()}
		}
	}
	return nil
}
