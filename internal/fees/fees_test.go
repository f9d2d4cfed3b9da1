package fees

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankpush/bankpush/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func txn(d time.Time, payee, amount string) model.Transaction {
	return model.Transaction{
		Date:     d,
		PayeeRaw: payee,
		Payee:    payee,
		Amount:   decimal.RequireFromString(amount),
	}
}

func TestReconcile_MatchesEarlierSameDate(t *testing.T) {
	day := date(2024, 1, 3)
	batch := []model.Transaction{
		txn(day, "Coffee Shop", "42.00"),
		txn(day, "1.50% af DKK 42.00 Coffee Shop USD", "-0.63"),
	}

	got := Reconcile(batch)
	require.Len(t, got, 2)
	assert.Equal(t, "Coffee Shop", got[1].Payee)
	assert.Equal(t, Memo, got[1].Memo)
	assert.Equal(t, "1.50% af DKK 42.00 Coffee Shop USD", got[1].PayeeRaw)

	// Purchase untouched, input untouched.
	assert.Equal(t, "Coffee Shop", got[0].Payee)
	assert.Empty(t, got[0].Memo)
	assert.Equal(t, "1.50% af DKK 42.00 Coffee Shop USD", batch[1].Payee)
	assert.Empty(t, batch[1].Memo)
	assert.Equal(t, 1, Count(batch, got))
}

func TestReconcile_NoMatch(t *testing.T) {
	tests := []struct {
		name  string
		batch []model.Transaction
	}{
		{
			name: "different date",
			batch: []model.Transaction{
				txn(date(2024, 1, 2), "Coffee Shop", "42.00"),
				txn(date(2024, 1, 3), "1.50% af DKK 42.00", "-0.63"),
			},
		},
		{
			name: "different amount",
			batch: []model.Transaction{
				txn(date(2024, 1, 3), "Coffee Shop", "41.00"),
				txn(date(2024, 1, 3), "1.50% af DKK 42.00", "-0.63"),
			},
		},
		{
			name: "purchase after fee",
			batch: []model.Transaction{
				txn(date(2024, 1, 3), "1.50% af DKK 42.00", "-0.63"),
				txn(date(2024, 1, 3), "Coffee Shop", "42.00"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.batch)
			assert.Equal(t, tt.batch, got)
			assert.Zero(t, Count(tt.batch, got))
		})
	}
}

func TestReconcile_FirstMatchWins(t *testing.T) {
	day := date(2024, 1, 3)
	batch := []model.Transaction{
		txn(day, "Rent", "-1000.00"),
		txn(day, "First Shop", "-42.00"),
		txn(day, "Second Shop", "-42.00"),
		txn(day, "1.50% af DKK -42.00", "-0.63"),
	}

	got := Reconcile(batch)
	assert.Equal(t, "First Shop", got[3].Payee)
	assert.Equal(t, Memo, got[3].Memo)
}

func TestReconcile_SignedAmountFormatting(t *testing.T) {
	day := date(2024, 1, 3)
	batch := []model.Transaction{
		txn(day, "Shop", "-42.00"),
		txn(day, "1.50% af DKK 42.00", "-0.63"),
	}

	// "-42.00" is not a substring of "... 42.00".
	got := Reconcile(batch)
	assert.Equal(t, "1.50% af DKK 42.00", got[1].Payee)
	assert.Empty(t, got[1].Memo)
}

func TestIsFee(t *testing.T) {
	assert.True(t, IsFee(txn(date(2024, 1, 1), "Gebyr 1.50% af DKK 10.00", "-0.15")))
	assert.False(t, IsFee(txn(date(2024, 1, 1), "Coffee Shop", "-10.00")))
}

func TestReconcile_Empty(t *testing.T) {
	assert.Empty(t, Reconcile(nil))
}
