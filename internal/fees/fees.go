// Package fees links foreign-transaction-fee lines to the purchase they
// were charged for.
package fees

import (
	"strings"

	"github.com/bankpush/bankpush/internal/model"
)

const (
	// Marker identifies a foreign-transaction-fee line by its payee text.
	Marker = "1.50% af DKK"
	// Memo is set on every fee line that was matched to a purchase.
	Memo = "Foreign transaction fee"
)

// Reconcile returns a copy of batch in which every fee line takes the payee
// of the first earlier transaction on the same date whose amount, formatted
// with two decimals, appears in the fee line's payee. Unmatched fee lines
// are left as they are. batch itself is not modified.
func Reconcile(batch []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(batch))
	copy(out, batch)

	for i := range out {
		if !IsFee(out[i]) {
			continue
		}
		if j := findPurchase(out[:i], out[i]); j >= 0 {
			out[i].Payee = out[j].Payee
			out[i].Memo = Memo
		}
	}
	return out
}

// IsFee reports whether txn is a foreign-transaction-fee line.
func IsFee(txn model.Transaction) bool {
	return strings.Contains(txn.Payee, Marker)
}

// Count returns how many transactions differ in payee or memo between
// before and after, which must be the same length.
func Count(before, after []model.Transaction) int {
	n := 0
	for i := range before {
		if before[i].Payee != after[i].Payee || before[i].Memo != after[i].Memo {
			n++
		}
	}
	return n
}

func findPurchase(earlier []model.Transaction, fee model.Transaction) int {
	for j, t := range earlier {
		if !t.Date.Equal(fee.Date) {
			continue
		}
		if strings.Contains(fee.Payee, t.Amount.StringFixed(2)) {
			return j
		}
	}
	return -1
}
