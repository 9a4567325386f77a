// Package rebalance computes the single-sided swap that moves a constant-product
// pool's spot price (reserveB / reserveA) toward a target.
package rebalance

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"poolrebalancer/internal/model"
)

const defaultDisplayDecimals = 18

var two = big.NewInt(2)

// Config controls target normalization and display of swap amounts.
type Config struct {
	// DisplayDecimals scales swap amounts for display.
	DisplayDecimals uint8
	// RoundTarget rounds the target price to the nearest integer before use.
	RoundTarget bool
	// Exact also solves the constant-product equation for the exact trade.
	Exact bool
}

func DefaultConfig() Config {
	return Config{DisplayDecimals: defaultDisplayDecimals}
}

// Calculator is stateless and safe for concurrent use.
type Calculator struct {
	cfg    Config
	logger *zap.Logger
}

func NewCalculator(cfg Config, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{cfg: cfg, logger: logger}
}

var defaultCalculator = NewCalculator(DefaultConfig(), nil)

// ComputeSwapPlan runs the default calculator.
func ComputeSwapPlan(reserveA, reserveB *big.Int, target *big.Rat) (model.SwapPlan, error) {
	return defaultCalculator.ComputeSwapPlan(reserveA, reserveB, target)
}

// Config returns the calculator settings.
func (c *Calculator) Config() Config {
	return c.cfg
}

// ComputeSwapPlan returns the amount to move the pool toward target.
//
// When the target is above the spot price the pool's asset1 reserve must grow
// to reserveA*target; half of that gap is reported as Amount1. Otherwise the
// asset0 reserve must grow to reserveB/target and half of that gap is reported
// as Amount0. Halving approximates the counter-movement of the other reserve
// during the swap. Divisions truncate toward zero.
func (c *Calculator) ComputeSwapPlan(reserveA, reserveB *big.Int, target *big.Rat) (model.SwapPlan, error) {
	if err := checkReserves(reserveA, reserveB); err != nil {
		return model.SwapPlan{}, err
	}
	if reserveA.Sign() == 0 {
		return model.SwapPlan{}, fmt.Errorf("%w: reserveA is zero, spot price undefined", ErrDivisionByZero)
	}

	t, err := c.normalizeTarget(target)
	if err != nil {
		return model.SwapPlan{}, err
	}

	p, q := t.Num(), t.Denom()
	scaledA := new(big.Int).Mul(reserveA, p)
	scaledB := new(big.Int).Mul(reserveB, q)

	if scaledA.Cmp(scaledB) > 0 {
		targetReserveB := scaledA.Quo(scaledA, q)
		amount1 := targetReserveB.Sub(targetReserveB, reserveB)
		amount1.Quo(amount1, two)
		return model.SwapPlan{
			Direction: model.DirectionAToB,
			Amount0:   big.NewInt(0),
			Amount1:   amount1,
			Target:    t,
		}, nil
	}

	targetReserveA := scaledB.Quo(scaledB, p)
	amount0 := targetReserveA.Sub(targetReserveA, reserveA)
	amount0.Quo(amount0, two)
	return model.SwapPlan{
		Direction: model.DirectionBToA,
		Amount0:   amount0,
		Amount1:   big.NewInt(0),
		Target:    t,
	}, nil
}

// NormalizeTarget applies the default and rounding policy to a target price.
func (c *Calculator) NormalizeTarget(target *big.Rat) (*big.Rat, error) {
	return c.normalizeTarget(target)
}

func (c *Calculator) normalizeTarget(target *big.Rat) (*big.Rat, error) {
	if target == nil || target.Sign() <= 0 {
		c.logger.Debug("target price normalized to default", zap.Stringer("target", ratStringer{target}))
		target = DefaultTargetPrice()
	} else {
		target = new(big.Rat).Set(target)
	}

	if c.cfg.RoundTarget {
		target = roundHalfUp(target)
	}
	if target.Sign() == 0 {
		return nil, fmt.Errorf("%w: target price is zero", ErrDivisionByZero)
	}
	return target, nil
}

// FormattedPlan is a SwapPlan rendered for display.
type FormattedPlan struct {
	Direction model.SwapDirection
	Amount0   string
	Amount1   string
}

// FormatPlan renders both amounts with DisplayDecimals. An amount that cannot
// be formatted is logged and kept in its raw form.
func (c *Calculator) FormatPlan(plan model.SwapPlan) FormattedPlan {
	return FormattedPlan{
		Direction: plan.Direction,
		Amount0:   c.FormatAmount(plan.Amount0),
		Amount1:   c.FormatAmount(plan.Amount1),
	}
}

// FormatAmount renders a raw swap amount with DisplayDecimals.
func (c *Calculator) FormatAmount(amount *big.Int) string {
	return c.FormatUnits(amount, c.cfg.DisplayDecimals)
}

// FormatUnits renders amount scaled by decimals, falling back to the raw text.
func (c *Calculator) FormatUnits(amount *big.Int, decimals uint8) string {
	raw := amount.String()
	text, err := FormatUnits(raw, decimals)
	if err != nil {
		c.logger.Warn("error converting amount", zap.String("raw", raw), zap.Uint8("decimals", decimals), zap.Error(err))
		return raw
	}
	return text
}

func checkReserves(reserveA, reserveB *big.Int) error {
	if reserveA == nil || reserveA.Sign() < 0 {
		return fmt.Errorf("%w: reserveA", ErrInvalidReserve)
	}
	if reserveB == nil || reserveB.Sign() < 0 {
		return fmt.Errorf("%w: reserveB", ErrInvalidReserve)
	}
	return nil
}

type ratStringer struct{ r *big.Rat }

func (s ratStringer) String() string {
	if s.r == nil {
		return "<nil>"
	}
	return s.r.RatString()
}
