package models

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatUSD renders a dollar value rounded to cents, e.g. "$1,234.50".
func FormatUSD(value decimal.Decimal) string {
	cents := value.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
