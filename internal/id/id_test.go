package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatImportID(t *testing.T) {
	tests := []struct {
		source     string
		milliunits int64
		date       string
		occurrence int
		want       string
	}{
		{"YNAB", -100000, "2023-12-31", 48213, "YNAB:-100000:2023-12-31:48213"},
		{"YNAB", 1234560, "2024-01-04", 10000, "YNAB:1234560:2024-01-04:10000"},
		{"bank", 0, "2024-02-29", 99999, "bank:0:2024-02-29:99999"},
	}
	for _, tt := range tests {
		got := FormatImportID(tt.source, tt.milliunits, tt.date, tt.occurrence)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewOccurrence_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		n := NewOccurrence()
		assert.GreaterOrEqual(t, n, 10000)
		assert.LessOrEqual(t, n, 99999)
	}
}

func TestImportID_String(t *testing.T) {
	got := ImportID{Source: "YNAB", Milliunits: -100000, Date: "2023-12-31", Occurrence: 48213}.String()
	assert.Equal(t, "YNAB:-100000:2023-12-31:48213", got)
}
