package rebalance

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ratioPrecision is the number of fractional digits kept for spot prices.
const ratioPrecision = 18

// FormatUnits scales a raw integer amount by 10^decimals. The result always
// carries a fractional part, so one whole unit renders as "1.0".
func FormatUnits(raw string, decimals uint8) (string, error) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return "", fmt.Errorf("%w: not an integer: %q", ErrFormatting, raw)
	}

	text := decimal.NewFromBigInt(value, -int32(decimals)).String()
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text, nil
}

// SpotPrice returns reserveB / reserveA in raw units.
func SpotPrice(reserveA, reserveB *big.Int) (decimal.Decimal, error) {
	if err := checkReserves(reserveA, reserveB); err != nil {
		return decimal.Zero, err
	}
	if reserveA.Sign() == 0 {
		return decimal.Zero, fmt.Errorf("%w: reserveA is zero", ErrDivisionByZero)
	}
	a := decimal.NewFromBigInt(reserveA, 0)
	b := decimal.NewFromBigInt(reserveB, 0)
	return b.DivRound(a, ratioPrecision), nil
}
