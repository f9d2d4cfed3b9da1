package importer

import (
	"fmt"
	"slices"
	"strings"
)

// Columns is the exact header of a bank export.
var Columns = []string{"Date", "Text", "Amount", "Balance", "Status", "Reconciled"}

// requiredColumns must be present for an upload to be accepted at all.
var requiredColumns = []string{"Date", "Text", "Amount"}

// SplitLine splits a raw export line on ";" after trimming trailing
// whitespace, and strips one layer of surrounding quotes from every field.
func SplitLine(line string) []string {
	fields := strings.Split(strings.TrimRight(line, " \t\r\n"), ";")
	for i, f := range fields {
		f = strings.TrimPrefix(f, `"`)
		fields[i] = strings.TrimSuffix(f, `"`)
	}
	return fields
}

// CheckHeader requires the header line to equal Columns exactly.
func CheckHeader(line string) error {
	fields := SplitLine(line)
	if !slices.Equal(fields, Columns) {
		return fmt.Errorf("%w: got %q, want %q", ErrSchema, fields, Columns)
	}
	return nil
}

// CheckHeaderLoose accepts any header with at least three fields that
// includes Date, Text and Amount.
func CheckHeaderLoose(line string) error {
	fields := SplitLine(line)
	if len(fields) < len(requiredColumns) {
		return fmt.Errorf("%w: expected header to contain %q, got %q", ErrSchema, requiredColumns, line)
	}
	for _, col := range requiredColumns {
		if !slices.Contains(fields, col) {
			return fmt.Errorf("%w: expected header to contain %q, got %q", ErrSchema, requiredColumns, line)
		}
	}
	return nil
}
