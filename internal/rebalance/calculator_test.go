package rebalance

import (
	"errors"
	"math/big"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"poolrebalancer/internal/model"
)

func bigInt(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid int: %s", s)
	}
	return v
}

func TestComputeSwapPlanIncreaseScenario(t *testing.T) {
	plan, err := ComputeSwapPlan(big.NewInt(1000), big.NewInt(200000), big.NewRat(400, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Direction != model.DirectionAToB {
		t.Fatalf("direction mismatch: %s", plan.Direction)
	}
	if plan.Amount0.Sign() != 0 {
		t.Fatalf("amount0 should be zero, got %s", plan.Amount0)
	}
	if plan.Amount1.Cmp(big.NewInt(100000)) != 0 {
		t.Fatalf("amount1 mismatch: got %s want 100000", plan.Amount1)
	}
}

func TestComputeSwapPlanDecreaseScenario(t *testing.T) {
	plan, err := ComputeSwapPlan(big.NewInt(1000), big.NewInt(200000), big.NewRat(100, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Direction != model.DirectionBToA {
		t.Fatalf("direction mismatch: %s", plan.Direction)
	}
	if plan.Amount0.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("amount0 mismatch: got %s want 500", plan.Amount0)
	}
	if plan.Amount1.Sign() != 0 {
		t.Fatalf("amount1 should be zero, got %s", plan.Amount1)
	}
}

var reserveCases = []struct {
	name string
	a, b string
}{
	{name: "small", a: "1000", b: "200000"},
	{name: "odd", a: "3", b: "7"},
	{name: "equal", a: "5000", b: "5000"},
	{name: "wei", a: "1000000000000000000", b: "2000000000000000000000"},
	{name: "wide", a: "123456789012345678901234567890", b: "987654321"},
}

func TestComputeSwapPlanAtTarget(t *testing.T) {
	one := big.NewInt(1)
	for _, tc := range reserveCases {
		a, b := bigInt(t, tc.a), bigInt(t, tc.b)
		plan, err := ComputeSwapPlan(a, b, new(big.Rat).SetFrac(b, a))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if new(big.Int).Abs(plan.Amount0).Cmp(one) > 0 || new(big.Int).Abs(plan.Amount1).Cmp(one) > 0 {
			t.Fatalf("%s: expected amounts within 1 unit of zero, got %s/%s", tc.name, plan.Amount0, plan.Amount1)
		}
	}
}

func TestComputeSwapPlanAboveSpot(t *testing.T) {
	for _, tc := range reserveCases {
		a, b := bigInt(t, tc.a), bigInt(t, tc.b)
		target := new(big.Rat).Mul(new(big.Rat).SetFrac(b, a), big.NewRat(2, 1))
		plan, err := ComputeSwapPlan(a, b, target)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if plan.Amount1.Sign() == 0 {
			t.Fatalf("%s: amount1 should be non-zero", tc.name)
		}
		if plan.Amount0.Sign() != 0 {
			t.Fatalf("%s: amount0 should be exactly zero, got %s", tc.name, plan.Amount0)
		}
	}
}

func TestComputeSwapPlanBelowSpot(t *testing.T) {
	for _, tc := range reserveCases {
		a, b := bigInt(t, tc.a), bigInt(t, tc.b)
		target := new(big.Rat).Mul(new(big.Rat).SetFrac(b, a), big.NewRat(1, 2))
		plan, err := ComputeSwapPlan(a, b, target)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if plan.Amount0.Sign() <= 0 {
			t.Fatalf("%s: amount0 should be positive, got %s", tc.name, plan.Amount0)
		}
		if plan.Amount1.Sign() != 0 {
			t.Fatalf("%s: amount1 should be exactly zero, got %s", tc.name, plan.Amount1)
		}
	}
}

func TestComputeSwapPlanIdempotent(t *testing.T) {
	a, b := big.NewInt(1000), big.NewInt(200000)
	target := ParseTargetPrice("250.75")

	first, err := ComputeSwapPlan(a, b, target)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := ComputeSwapPlan(a, b, target)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first.Direction != second.Direction || first.Amount0.Cmp(second.Amount0) != 0 || first.Amount1.Cmp(second.Amount1) != 0 {
		t.Fatalf("results differ: %+v != %+v", first, second)
	}
	if a.Cmp(big.NewInt(1000)) != 0 || b.Cmp(big.NewInt(200000)) != 0 || target.Cmp(big.NewRat(1003, 4)) != 0 {
		t.Fatalf("inputs were mutated: %s %s %s", a, b, target.RatString())
	}
}

func TestComputeSwapPlanNormalization(t *testing.T) {
	a, b := big.NewInt(1000), big.NewInt(200000)
	want, err := ComputeSwapPlan(a, b, big.NewRat(1, 1))
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}

	targets := map[string]*big.Rat{
		"not-a-number": ParseTargetPrice("not-a-number"),
		"negative":     TargetFromFloat(-5),
		"negative rat": big.NewRat(-5, 1),
		"zero":         new(big.Rat),
		"nil":          nil,
	}
	for name, target := range targets {
		got, err := ComputeSwapPlan(a, b, target)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got.Direction != want.Direction || got.Amount0.Cmp(want.Amount0) != 0 || got.Amount1.Cmp(want.Amount1) != 0 {
			t.Fatalf("%s: expected plan for price 1, got %+v", name, got)
		}
		if got.Target.Cmp(big.NewRat(1, 1)) != 0 {
			t.Fatalf("%s: target should normalize to 1, got %s", name, got.Target.RatString())
		}
	}
}

func TestComputeSwapPlanDivisionByZero(t *testing.T) {
	_, err := ComputeSwapPlan(big.NewInt(0), big.NewInt(200000), big.NewRat(400, 1))
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
	_, err = ComputeSwapPlan(big.NewInt(0), big.NewInt(0), nil)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero for empty pool, got %v", err)
	}
}

func TestComputeSwapPlanInvalidReserve(t *testing.T) {
	if _, err := ComputeSwapPlan(big.NewInt(-1), big.NewInt(10), nil); !errors.Is(err, ErrInvalidReserve) {
		t.Fatalf("expected ErrInvalidReserve, got %v", err)
	}
	if _, err := ComputeSwapPlan(big.NewInt(10), nil, nil); !errors.Is(err, ErrInvalidReserve) {
		t.Fatalf("expected ErrInvalidReserve for nil reserve, got %v", err)
	}
}

func TestComputeSwapPlanZeroReserveB(t *testing.T) {
	plan, err := ComputeSwapPlan(big.NewInt(1000), big.NewInt(0), big.NewRat(2, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Amount1.Cmp(big.NewInt(1000)) != 0 || plan.Amount0.Sign() != 0 {
		t.Fatalf("unexpected plan: %s/%s", plan.Amount0, plan.Amount1)
	}
}

func TestComputeSwapPlanFractionalTarget(t *testing.T) {
	tests := []struct {
		target  string
		amount0 int64
		amount1 int64
	}{
		{target: "400.5", amount0: 0, amount1: 100250},
		{target: "0.4", amount0: 249500, amount1: 0},
		{target: "199.9", amount0: 0, amount1: 0},
	}

	for _, tc := range tests {
		plan, err := ComputeSwapPlan(big.NewInt(1000), big.NewInt(200000), ParseTargetPrice(tc.target))
		if err != nil {
			t.Fatalf("target %s: unexpected error: %v", tc.target, err)
		}
		if plan.Amount0.Cmp(big.NewInt(tc.amount0)) != 0 || plan.Amount1.Cmp(big.NewInt(tc.amount1)) != 0 {
			t.Fatalf("target %s: got %s/%s want %d/%d", tc.target, plan.Amount0, plan.Amount1, tc.amount0, tc.amount1)
		}
	}
}

func TestComputeSwapPlanRoundTarget(t *testing.T) {
	calc := NewCalculator(Config{DisplayDecimals: 18, RoundTarget: true}, nil)
	a, b := big.NewInt(1000), big.NewInt(200000)

	plan, err := calc.ComputeSwapPlan(a, b, ParseTargetPrice("399.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Target.Cmp(big.NewRat(400, 1)) != 0 {
		t.Fatalf("target should round to 400, got %s", plan.Target.RatString())
	}
	if plan.Amount1.Cmp(big.NewInt(100000)) != 0 {
		t.Fatalf("amount1 mismatch: %s", plan.Amount1)
	}

	if _, err := calc.ComputeSwapPlan(a, b, ParseTargetPrice("0.4")); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero when target rounds to zero, got %v", err)
	}
}

func TestFormatPlan(t *testing.T) {
	calc := NewCalculator(DefaultConfig(), nil)
	plan, err := calc.ComputeSwapPlan(big.NewInt(1000), big.NewInt(200000), big.NewRat(400, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	formatted := calc.FormatPlan(plan)
	if formatted.Amount0 != "0.0" {
		t.Fatalf("amount0 mismatch: %s", formatted.Amount0)
	}
	if formatted.Amount1 != "0.0000000000001" {
		t.Fatalf("amount1 mismatch: %s", formatted.Amount1)
	}
	if formatted.Direction != model.DirectionAToB {
		t.Fatalf("direction mismatch: %s", formatted.Direction)
	}

	six := NewCalculator(Config{DisplayDecimals: 6}, nil).FormatPlan(plan)
	if six.Amount1 != "0.1" {
		t.Fatalf("display decimals not applied: %s", six.Amount1)
	}
}

func TestFormatPlanFallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	calc := NewCalculator(DefaultConfig(), zap.New(core))

	formatted := calc.FormatPlan(model.SwapPlan{Amount0: nil, Amount1: big.NewInt(5)})
	if formatted.Amount0 != "<nil>" {
		t.Fatalf("expected raw fallback, got %q", formatted.Amount0)
	}
	if formatted.Amount1 != "0.000000000000000005" {
		t.Fatalf("amount1 mismatch: %s", formatted.Amount1)
	}
	if logs.FilterMessage("error converting amount").Len() != 1 {
		t.Fatalf("expected one formatting warning, got %d", logs.Len())
	}
}
