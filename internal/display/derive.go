package display

import (
	"fmt"
	"math/big"
	"strings"

	"poolrebalancer/internal/model"
	"poolrebalancer/internal/rebalance"
)

const undefinedRatio = "undefined"

// Model is everything the text view shows.
type Model struct {
	PoolID  string
	Loading bool
	Error   string

	Symbol0      string
	Symbol1      string
	CurrentPrice string
	Reserve0     string
	Reserve1     string

	TargetText  string
	Target      string
	TargetValid bool

	Plan      *model.SwapPlan
	Direction model.SwapDirection
	Amount0   string
	Amount1   string
	PlanError string

	Exact *ExactView
}

// ExactView is the closed-form trade, formatted with each asset's decimals.
type ExactView struct {
	Swap      model.ExactSwap
	SymbolIn  string
	SymbolOut string
	AmountIn  string
	AmountOut string
}

// Derive builds the view for a snapshot. It performs no I/O.
func Derive(snapshot Snapshot, calc *rebalance.Calculator) Model {
	m := Model{
		PoolID:     snapshot.PoolID,
		TargetText: snapshot.TargetText,
	}

	if snapshot.FetchErr != nil {
		m.Error = snapshot.FetchErr.Error()
		return m
	}
	if snapshot.State == nil {
		m.Loading = true
		return m
	}

	state := snapshot.State
	m.Symbol0 = state.Asset0.Symbol
	m.Symbol1 = state.Asset1.Symbol
	m.Reserve0 = calc.FormatUnits(state.Reserve0, state.Asset0.Decimals)
	m.Reserve1 = calc.FormatUnits(state.Reserve1, state.Asset1.Decimals)

	ratio := undefinedRatio
	if spot, err := rebalance.SpotPrice(state.Reserve0, state.Reserve1); err == nil {
		ratio = spot.String()
	}
	m.CurrentPrice = fmt.Sprintf("1 %s = %s %s", m.Symbol0, ratio, m.Symbol1)

	m.TargetValid = rebalance.IsValidTarget(snapshot.TargetText)
	target, err := calc.NormalizeTarget(rebalance.ParseTargetPrice(snapshot.TargetText))
	if err != nil {
		m.Target = "0"
		m.PlanError = err.Error()
		return m
	}
	m.Target = ratText(target)

	plan, err := calc.ComputeSwapPlan(state.Reserve0, state.Reserve1, target)
	if err != nil {
		m.PlanError = err.Error()
		return m
	}
	formatted := calc.FormatPlan(plan)
	m.Plan = &plan
	m.Direction = formatted.Direction
	m.Amount0 = formatted.Amount0
	m.Amount1 = formatted.Amount1

	if calc.Config().Exact {
		m.Exact = deriveExact(calc, state, target)
	}

	return m
}

func deriveExact(calc *rebalance.Calculator, state *model.PoolState, target *big.Rat) *ExactView {
	swap, err := calc.SolveExact(state.Reserve0, state.Reserve1, target)
	if err != nil {
		return nil
	}

	in, out := state.Asset0, state.Asset1
	if swap.Direction == model.DirectionBToA {
		in, out = state.Asset1, state.Asset0
	}
	return &ExactView{
		Swap:      swap,
		SymbolIn:  in.Symbol,
		SymbolOut: out.Symbol,
		AmountIn:  calc.FormatUnits(swap.AmountIn, in.Decimals),
		AmountOut: calc.FormatUnits(swap.AmountOut, out.Decimals),
	}
}

// ratText renders a rational with up to 18 fractional digits and no trailing zeros.
func ratText(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	text := strings.TrimRight(r.FloatString(18), "0")
	return strings.TrimSuffix(text, ".")
}
