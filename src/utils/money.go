package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in the display format of currency, rounded to
// the currency's minor unit (e.g. "$1,234.57", "€0.49", "¥1,500").
func FormatMoney(amount decimal.Decimal, currency string) string {
	// money.New never returns a nil currency, unknown codes get a generic format
	cur := money.New(0, currency).Currency()
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// RoundMoney rounds amount to the minor unit of currency.
func RoundMoney(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(int32(money.New(0, currency).Currency().Fraction))
}
