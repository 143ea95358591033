package models

import "github.com/shopspring/decimal"

// Money is an amount with two decimal places. In JSON it is always a quoted
// fixed-point string such as "35.00"; any decimal form is accepted on input.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d half away from zero to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{d.Round(2)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
