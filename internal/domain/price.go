package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonDigitExpr = regexp.MustCompile(`[^0-9]`)

// ParsePrice normalizes a supplier price string to a decimal amount of whole
// currency units. The feed writes prices like "5'990.00 руб."; the fraction
// is always zero kopecks and is discarded together with every non-digit
// character, so the example parses to 5990.
func ParsePrice(raw string) (decimal.Decimal, error) {
	integer, _, _ := strings.Cut(raw, ".")
	cleaned := nonDigitExpr.ReplaceAllString(integer, "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("price %q contains no digits", raw)
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", raw, err)
	}
	return value, nil
}

// PriceRule is the fixed currency/markup transform applied to every feed
// price before upload.
type PriceRule struct {
	Currency string
	Markup   decimal.Decimal
}

// Apply parses the raw feed price, applies the markup and truncates to whole
// currency units. A non-positive markup means "no markup".
func (r PriceRule) Apply(raw string) (int64, error) {
	price, err := ParsePrice(raw)
	if err != nil {
		return 0, err
	}

	if r.Markup.IsPositive() {
		price = price.Mul(r.Markup)
	}
	return price.IntPart(), nil
}
