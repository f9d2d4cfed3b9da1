package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.234,56", "1234.56"},
		{"-100,00", "-100.00"},
		{"0,00", "0.00"},
		{"1.000.000,01", "1000000.01"},
		{"42", "42.00"},
		{"-0,63", "-0.63"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got.StringFixed(2), "input: %s", tt.input)
	}
}

func TestParseAmount_Errors(t *testing.T) {
	badInputs := []string{
		"abc",
		"",
		"1,2,3",
		"12,5x",
	}
	for _, input := range badInputs {
		_, err := ParseAmount(input)
		assert.ErrorIs(t, err, ErrParse, "input: %q", input)
	}
}
