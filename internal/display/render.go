package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"poolrebalancer/internal/model"
)

// Render writes the text view of m.
func (m Model) Render(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Pool Address: %s\n", m.PoolID)
	switch {
	case m.Error != "":
		fmt.Fprintf(&b, "Error: %s\n", m.Error)
	case m.Loading:
		b.WriteString("Loading...\n")
	default:
		fmt.Fprintf(&b, "Current Price: %s\n", m.CurrentPrice)
		fmt.Fprintf(&b, "Current %s Reserve: %s\n", m.Symbol0, m.Reserve0)
		fmt.Fprintf(&b, "Current %s Reserve: %s\n", m.Symbol1, m.Reserve1)
		m.renderPlan(&b)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (m Model) renderPlan(b *strings.Builder) {
	if strings.TrimSpace(m.TargetText) == "" {
		return
	}

	target := m.Target
	if !m.TargetValid {
		target = fmt.Sprintf("%s (from %q)", m.Target, m.TargetText)
	}
	fmt.Fprintf(b, "Target Price: %s %s = 1 %s\n", target, m.Symbol1, m.Symbol0)

	if m.PlanError != "" {
		fmt.Fprintf(b, "Plan Error: %s\n", m.PlanError)
		return
	}
	fmt.Fprintf(b, "%s to SWAP: %s\n", m.Symbol0, m.Amount0)
	fmt.Fprintf(b, "%s to SWAP: %s\n", m.Symbol1, m.Amount1)

	if m.Exact != nil {
		if m.Exact.Swap.Direction == "" {
			b.WriteString("Exact: pool already at target\n")
		} else {
			fmt.Fprintf(b, "Exact: supply %s %s, receive %s %s\n", m.Exact.AmountIn, m.Exact.SymbolIn, m.Exact.AmountOut, m.Exact.SymbolOut)
		}
	}
}

// Record flattens a resolved snapshot and its view for sinks. It reports
// false while the snapshot has no pool state.
func Record(snapshot Snapshot, m Model) (model.PlanRecord, bool) {
	state := snapshot.State
	if state == nil {
		return model.PlanRecord{}, false
	}

	record := model.PlanRecord{
		ChainID:     state.ChainID,
		Pool:        state.Pool,
		Token0:      state.Asset0.Address,
		Token1:      state.Asset1.Address,
		Symbol0:     state.Asset0.Symbol,
		Symbol1:     state.Asset1.Symbol,
		Decimals0:   state.Asset0.Decimals,
		Decimals1:   state.Asset1.Decimals,
		Reserve0:    state.Reserve0.String(),
		Reserve1:    state.Reserve1.String(),
		TargetPrice: m.Target,
		PlanError:   m.PlanError,
		ObservedAt:  state.ObservedAt.UTC().Format(time.RFC3339Nano),
	}
	if m.Plan != nil {
		record.Direction = string(m.Plan.Direction)
		record.Amount0 = m.Plan.Amount0.String()
		record.Amount1 = m.Plan.Amount1.String()
	}
	if m.Exact != nil && m.Exact.Swap.Direction != "" {
		record.ExactDirection = string(m.Exact.Swap.Direction)
		record.ExactAmountIn = m.Exact.Swap.AmountIn.String()
		record.ExactAmountOut = m.Exact.Swap.AmountOut.String()
	}
	return record, true
}
