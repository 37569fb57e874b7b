package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want int64
	}{
		{"5'990.00 руб.", 5990},
		{"100", 100},
		{"1 200.50", 1200},
		{"0", 0},
	}

	for _, tc := range cases {
		value, err := ParsePrice(tc.raw)
		if err != nil {
			t.Fatalf("ParsePrice(%q) returned error: %v", tc.raw, err)
		}
		if value.IntPart() != tc.want {
			t.Fatalf("ParsePrice(%q) = %s, want %d", tc.raw, value, tc.want)
		}
	}
}

func TestParsePriceNoDigits(t *testing.T) {
	t.Parallel()

	if _, err := ParsePrice("руб."); err == nil {
		t.Fatal("expected error for price without digits")
	}
}

func TestPriceRuleApplyMarkup(t *testing.T) {
	t.Parallel()

	rule := PriceRule{Currency: "RUB", Markup: decimal.RequireFromString("1.2")}

	value, err := rule.Apply("1'000.00 руб.")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if value != 1200 {
		t.Fatalf("expected 1200, got %d", value)
	}
}

func TestPriceRuleApplyTruncates(t *testing.T) {
	t.Parallel()

	rule := PriceRule{Currency: "RUB", Markup: decimal.RequireFromString("1.15")}

	value, err := rule.Apply("99")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if value != 113 {
		t.Fatalf("expected 113 (truncated), got %d", value)
	}
}

func TestPriceRuleApplyZeroMarkup(t *testing.T) {
	t.Parallel()

	rule := PriceRule{Currency: "RUB"}

	value, err := rule.Apply("500")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if value != 500 {
		t.Fatalf("zero markup must mean no markup, got %d", value)
	}
}
