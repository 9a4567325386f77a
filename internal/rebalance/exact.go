package rebalance

import (
	"fmt"
	"math/big"

	"poolrebalancer/internal/model"
)

// SolveExact returns the fee-less constant-product trade after which
// reserveB/reserveA equals target, up to integer square root truncation.
//
// With k = reserveA*reserveB the post-trade reserves are A' = sqrt(k/t) and
// B' = sqrt(k*t). Raising the price means supplying asset1 (B'-B) and receiving
// asset0 (A-A'); lowering it is the mirror image.
func (c *Calculator) SolveExact(reserveA, reserveB *big.Int, target *big.Rat) (model.ExactSwap, error) {
	if err := checkReserves(reserveA, reserveB); err != nil {
		return model.ExactSwap{}, err
	}
	if reserveA.Sign() == 0 {
		return model.ExactSwap{}, fmt.Errorf("%w: reserveA is zero, spot price undefined", ErrDivisionByZero)
	}
	if reserveB.Sign() == 0 {
		return model.ExactSwap{}, ErrEmptyReserve
	}

	t, err := c.normalizeTarget(target)
	if err != nil {
		return model.ExactSwap{}, err
	}
	p, q := t.Num(), t.Denom()

	k := new(big.Int).Mul(reserveA, reserveB)
	ratioA := new(big.Int).Mul(k, q)
	nextA := new(big.Int).Sqrt(ratioA.Quo(ratioA, p))
	ratioB := new(big.Int).Mul(k, p)
	nextB := new(big.Int).Sqrt(ratioB.Quo(ratioB, q))

	swap := model.ExactSwap{AmountIn: big.NewInt(0), AmountOut: big.NewInt(0)}
	rising := new(big.Int).Mul(reserveA, p).Cmp(new(big.Int).Mul(reserveB, q)) > 0
	if rising {
		swap.AmountIn.Sub(nextB, reserveB)
		swap.AmountOut.Sub(reserveA, nextA)
	} else {
		swap.AmountIn.Sub(nextA, reserveA)
		swap.AmountOut.Sub(reserveB, nextB)
	}

	if swap.AmountIn.Sign() <= 0 || swap.AmountOut.Sign() < 0 {
		return model.ExactSwap{AmountIn: big.NewInt(0), AmountOut: big.NewInt(0)}, nil
	}
	if rising {
		swap.Direction = model.DirectionBToA
	} else {
		swap.Direction = model.DirectionAToB
	}
	return swap, nil
}

// SolveExact runs the default calculator.
func SolveExact(reserveA, reserveB *big.Int, target *big.Rat) (model.ExactSwap, error) {
	return defaultCalculator.SolveExact(reserveA, reserveB, target)
}
