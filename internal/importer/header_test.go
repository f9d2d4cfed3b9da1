package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a;b;c", []string{"a", "b", "c"}},
		{`"a";"b";"c"` + "\r\n", []string{"a", "b", "c"}},
		{`""x"";y`, []string{`"x"`, "y"}},
		{`"open;close"`, []string{"open", "close"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLine(tt.input), "input: %q", tt.input)
	}
}

func TestCheckHeader(t *testing.T) {
	assert.NoError(t, CheckHeader("Date;Text;Amount;Balance;Status;Reconciled"))
	assert.NoError(t, CheckHeader(`"Date";"Text";"Amount";"Balance";"Status";"Reconciled"` + "\r\n"))

	assert.ErrorIs(t, CheckHeader("Date;Text;Amount"), ErrSchema)
	assert.ErrorIs(t, CheckHeader("Text;Date;Amount;Balance;Status;Reconciled"), ErrSchema)
	assert.ErrorIs(t, CheckHeader("Date;Text;Amount;Balance;Status;Reconciled;More"), ErrSchema)
}

func TestCheckHeaderLoose(t *testing.T) {
	assert.NoError(t, CheckHeaderLoose("Date;Text;Amount"))
	assert.NoError(t, CheckHeaderLoose("Date;Text;Amount;Balance;Status;Reconciled;More"))
	assert.NoError(t, CheckHeaderLoose(`"Amount";"Text";"Date"`))

	assert.ErrorIs(t, CheckHeaderLoose("Date;Text"), ErrSchema)
	assert.ErrorIs(t, CheckHeaderLoose("Date;Description;Amount"), ErrSchema)
	assert.ErrorIs(t, CheckHeaderLoose("Date,Text,Amount"), ErrSchema)
}
