package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a Danish-formatted number ("1.234,56", "-100,00")
// to a decimal. Dots are thousands separators, the comma is the decimal point.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(s, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w %q", ErrParse, s)
	}
	return d, nil
}
