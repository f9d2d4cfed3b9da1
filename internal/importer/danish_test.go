package importer

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Date;Text;Amount;Balance;Status;Reconciled\n"

func TestDanishParser_ParseLine(t *testing.T) {
	p := NewDanishParser(DefaultFilter())
	txn, err := p.ParseLine("31.12.2023;Test Payment;-100,00;1.000,00;Executed;N")
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, "2023-12-31", txn.ISODate())
	assert.Equal(t, "Test Payment", txn.Payee)
	assert.Equal(t, "Test Payment", txn.PayeeRaw)
	assert.Equal(t, "100.00", txn.Outflow().StringFixed(2))
	assert.True(t, txn.Inflow().IsZero())
	assert.False(t, txn.Cleared)
	assert.Empty(t, txn.Category)
	assert.Empty(t, txn.Memo)
	assert.Equal(t, "Executed", txn.Status)
}

func TestDanishParser_QuotedFields(t *testing.T) {
	p := NewDanishParser(DefaultFilter())
	txn, err := p.ParseLine(`"15.03.2024";"Bager )) ";"1.234,56";"9.999,99";"Executed";"Executed"` + "\r\n")
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, "2024-03-15", txn.ISODate())
	assert.Equal(t, "Bager )) ", txn.PayeeRaw)
	assert.Equal(t, "Bager ", txn.Payee)
	assert.Equal(t, "1234.56", txn.Inflow().StringFixed(2))
	assert.True(t, txn.Cleared)
}

func TestDanishParser_FilteredStatus(t *testing.T) {
	p := NewDanishParser(DefaultFilter())
	txn, err := p.ParseLine("31.12.2023;Pending;-100,00;1.000,00;Venter;N")
	require.NoError(t, err)
	assert.Nil(t, txn)
}

func TestDanishParser_FilterNotEnforced(t *testing.T) {
	p := NewDanishParser(Filter{ClearedStatuses: []string{"Executed"}})
	txn, err := p.ParseLine("31.12.2023;Pending;-100,00;1.000,00;Venter;N")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, "Venter", txn.Status)
	assert.False(t, txn.Cleared)
}

// The status filter reads the second-to-last field while the cleared flag
// always comes from field 5. A trailing column moves the former only.
func TestDanishParser_TrailingColumnShiftsStatusOnly(t *testing.T) {
	p := NewDanishParser(DefaultFilter())

	txn, err := p.ParseLine("31.12.2023;Shop;-1,00;0,00;Venter;Executed;Executed;extra")
	require.NoError(t, err)
	require.NotNil(t, txn, "status read from second-to-last field")
	assert.True(t, txn.Cleared, "cleared read from field 5")

	txn, err = p.ParseLine("31.12.2023;Shop;-1,00;0,00;Executed;N;Venter;extra")
	require.NoError(t, err)
	assert.Nil(t, txn)
}

func TestDanishParser_LineErrors(t *testing.T) {
	p := NewDanishParser(DefaultFilter())

	_, err := p.ParseLine("31.12.2023;Short;-1,00;Executed")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = p.ParseLine("2023-12-31;Bad date;-1,00;0,00;Executed;N")
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "parsing date")

	_, err = p.ParseLine("31.12.2023;Bad amount;abc;0,00;Executed;N")
	assert.ErrorIs(t, err, ErrParse)
}

func TestDanishParser_BlankLine(t *testing.T) {
	p := NewDanishParser(DefaultFilter())
	for _, line := range []string{"", "  \r\n"} {
		txn, err := p.ParseLine(line)
		assert.ErrorIs(t, err, ErrFormat, "line: %q", line)
		assert.Nil(t, txn)
	}
}

func TestDanishParser_BlankLineAbortsParse(t *testing.T) {
	input := "Date;Text;Amount;Balance;Status;Reconciled\n" +
		"30.12.2023;First;-1,00;1.000,00;Executed;N\n" +
		"\n" +
		"31.12.2023;Second;-2,00;998,00;Executed;N\n"

	txns, err := NewDanishParser(DefaultFilter()).Parse(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "line 3:")
	assert.Nil(t, txns)
}

func TestDanishParser_Parse(t *testing.T) {
	f, err := os.Open("../../testdata/danish_export.csv")
	require.NoError(t, err)
	defer f.Close()

	p := NewDanishParser(DefaultFilter())
	txns, err := p.Parse(f)
	require.NoError(t, err)
	require.Len(t, txns, 4, "pending row filtered out")

	// ISO-8859-1 bytes decode to UTF-8.
	assert.Equal(t, "Netto Nørrebro", txns[0].Payee)
	assert.True(t, txns[0].Cleared)
	assert.Equal(t, "Café Ægir", txns[1].Payee)
	assert.Equal(t, "-42.00", txns[1].Amount.StringFixed(2))
	assert.False(t, txns[1].Cleared)
	assert.Equal(t, "Løn januar", txns[3].Payee)
	assert.Equal(t, "25000.00", txns[3].Inflow().StringFixed(2))
}

func TestDanishParser_HeaderMismatch(t *testing.T) {
	p := NewDanishParser(DefaultFilter())

	_, err := p.Parse(strings.NewReader("Date;Text;Amount;Balance;Status\n"))
	assert.ErrorIs(t, err, ErrSchema)

	_, err = p.Parse(strings.NewReader("Date;Text;Amount;Balance;Status;Reconciled;Extra\n"))
	assert.ErrorIs(t, err, ErrSchema)

	_, err = p.Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestDanishParser_QuotedHeader(t *testing.T) {
	p := NewDanishParser(DefaultFilter())
	txns, err := p.Parse(strings.NewReader(`"Date";"Text";"Amount";"Balance";"Status";"Reconciled"` + "\n"))
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestDanishParser_FailFast(t *testing.T) {
	data := header +
		"01.01.2024;Good;-1,00;0,00;Executed;N\n" +
		"02.01.2024;Bad;x;0,00;Executed;N\n" +
		"03.01.2024;Good;-1,00;0,00;Executed;N\n"

	p := NewDanishParser(DefaultFilter())
	txns, err := p.Parse(strings.NewReader(data))
	assert.Nil(t, txns)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "line 3")
}

func TestDanishParser_Format(t *testing.T) {
	p := NewDanishParser(DefaultFilter())
	assert.Equal(t, "danish", p.Format())
}
