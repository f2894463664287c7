package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places persisted for currency amounts
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds an amount to the persisted currency scale
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Percent returns base * pct / 100
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// FormatRupees renders an amount the way user-facing messages show it
func FormatRupees(d decimal.Decimal) string {
	return fmt.Sprintf("₹%s", d.StringFixed(MoneyScale))
}
