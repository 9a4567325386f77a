package rebalance

import (
	"errors"
	"math/big"
	"testing"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		raw      string
		decimals uint8
		want     string
	}{
		{raw: "1000000000000000000", decimals: 18, want: "1.0"},
		{raw: "100000", decimals: 18, want: "0.0000000000001"},
		{raw: "0", decimals: 18, want: "0.0"},
		{raw: "-500", decimals: 18, want: "-0.0000000000000005"},
		{raw: "123456", decimals: 6, want: "0.123456"},
		{raw: "1500000", decimals: 6, want: "1.5"},
		{raw: "42", decimals: 0, want: "42.0"},
		{raw: " 2500000000000000000 ", decimals: 18, want: "2.5"},
	}

	for _, tc := range tests {
		got, err := FormatUnits(tc.raw, tc.decimals)
		if err != nil {
			t.Fatalf("raw %q: unexpected error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("raw %q decimals %d: got %s want %s", tc.raw, tc.decimals, got, tc.want)
		}
	}
}

func TestFormatUnitsMalformed(t *testing.T) {
	for _, raw := range []string{"12.5", "abc", "", "<nil>", "1e18"} {
		if _, err := FormatUnits(raw, 18); !errors.Is(err, ErrFormatting) {
			t.Fatalf("raw %q: expected ErrFormatting, got %v", raw, err)
		}
	}
}

func TestSpotPrice(t *testing.T) {
	price, err := SpotPrice(big.NewInt(1000), big.NewInt(200000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.String() != "200" {
		t.Fatalf("price mismatch: %s", price.String())
	}

	price, err = SpotPrice(big.NewInt(3), big.NewInt(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.String() != "0.333333333333333333" {
		t.Fatalf("price mismatch: %s", price.String())
	}

	if _, err := SpotPrice(big.NewInt(0), big.NewInt(1)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}
