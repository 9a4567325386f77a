package model

import "math/big"

// SwapDirection names the side that is supplied to move the price.
type SwapDirection string

const (
	DirectionAToB SwapDirection = "A_TO_B"
	DirectionBToA SwapDirection = "B_TO_A"
)

// SwapPlan is the single-sided amount that moves spot price toward Target.
// At most one of Amount0 and Amount1 is non-zero.
type SwapPlan struct {
	Direction SwapDirection
	Amount0   *big.Int
	Amount1   *big.Int
	Target    *big.Rat
}

// ExactSwap is a constant-product trade that lands on the target ratio.
type ExactSwap struct {
	Direction SwapDirection
	AmountIn  *big.Int
	AmountOut *big.Int
}
