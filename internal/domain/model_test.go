package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountInRange(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"3.05502416", true},
		{"1", true},
		{"1e18", true},
		{"0.000000000000000001", true},
		{"0", false},
		{"-1", false},
		{"1e19", false},
		{"1000000000000000001", false},
		{"1e400", false},
		{"1e20000000", false},
		{"1e-19", false},
	}
	for _, c := range cases {
		if got := AmountInRange(decimal.RequireFromString(c.in)); got != c.want {
			t.Fatalf("AmountInRange(%s) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseAction(t *testing.T) {
	if a, ok := ParseAction(" SELL "); !ok || a != Sell {
		t.Fatalf("ParseAction(SELL) = %q, %v", a, ok)
	}
	if _, ok := ParseAction("hold"); ok {
		t.Fatalf("ParseAction(hold) must fail")
	}
}
