package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the ISO-8601 date layout used by the budgeting API.
const DateFormat = "2006-01-02"

var milliunitsPerUnit = decimal.NewFromInt(1000)

// Transaction represents a parsed bank export row.
type Transaction struct {
	Date     time.Time
	PayeeRaw string // description field exactly as exported
	Payee    string // display payee; may be rewritten by fee reconciliation
	Category string
	Memo     string
	Amount   decimal.Decimal // negative = outflow, positive = inflow
	Ratio    decimal.Decimal // outflow scale; zero means 1
	Cleared  bool
	Status   string // raw status column
}

// ISODate returns the date as YYYY-MM-DD.
func (t Transaction) ISODate() string {
	return t.Date.Format(DateFormat)
}

// Inflow returns Amount when positive, otherwise zero.
func (t Transaction) Inflow() decimal.Decimal {
	if t.Amount.IsPositive() {
		return t.Amount
	}
	return decimal.Zero
}

// Outflow returns -Amount scaled by Ratio when Amount is negative, otherwise zero.
func (t Transaction) Outflow() decimal.Decimal {
	if !t.Amount.IsNegative() {
		return decimal.Zero
	}
	out := t.Amount.Neg()
	if !t.Ratio.IsZero() {
		out = out.Mul(t.Ratio)
	}
	return out
}

// Milliunits returns round(Amount * 1000).
func (t Transaction) Milliunits() int64 {
	return t.Amount.Mul(milliunitsPerUnit).Round(0).IntPart()
}
