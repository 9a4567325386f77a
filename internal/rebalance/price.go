package rebalance

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// maxExponent bounds scientific notation so "1e999999999" cannot allocate a huge integer.
const maxExponent = 128

// DefaultTargetPrice returns the price used when the input is not a positive number.
func DefaultTargetPrice() *big.Rat {
	return big.NewRat(1, 1)
}

// ParseTargetPrice coerces operator text into an exact positive price
// (units of asset1 per unit of asset0). Surrounding whitespace is ignored,
// decimal, exponent and 0x-prefixed hex forms are accepted. Anything else,
// and any value <= 0, yields DefaultTargetPrice.
func ParseTargetPrice(text string) *big.Rat {
	price, ok := parseNumber(text)
	if !ok || price.Sign() <= 0 {
		return DefaultTargetPrice()
	}
	return price
}

// TargetFromFloat converts a numeric target using its shortest decimal form.
func TargetFromFloat(value float64) *big.Rat {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return DefaultTargetPrice()
	}
	return decimal.NewFromFloat(value).Rat()
}

// IsValidTarget reports whether text parses to a positive price without falling back.
func IsValidTarget(text string) bool {
	price, ok := parseNumber(text)
	return ok && price.Sign() > 0
}

func parseNumber(text string) (*big.Rat, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}

	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		n, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, false
		}
		return new(big.Rat).SetInt(n), true
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return nil, false
	}
	return d.Rat(), true
}

// roundHalfUp rounds a positive rational to the nearest integer, halves away from zero.
func roundHalfUp(r *big.Rat) *big.Rat {
	num := new(big.Int).Mul(r.Num(), big.NewInt(2))
	num.Add(num, r.Denom())
	den := new(big.Int).Mul(r.Denom(), big.NewInt(2))
	return new(big.Rat).SetInt(num.Quo(num, den))
}
