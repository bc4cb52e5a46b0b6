package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a money or quantity cell. Currency symbols, thousands
// separators and accounting parentheses ("(12.50)" = -12.50) are accepted.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number '%s': %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
