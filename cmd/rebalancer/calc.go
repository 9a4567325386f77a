package main

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"poolrebalancer/internal/display"
	"poolrebalancer/internal/model"
)

func runCalc(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	flags := cmd.Flags()
	reserve0, err := parseReserve(flags, "reserve0")
	if err != nil {
		return err
	}
	reserve1, err := parseReserve(flags, "reserve1")
	if err != nil {
		return err
	}
	decimals0, _ := flags.GetUint8("decimals0")
	decimals1, _ := flags.GetUint8("decimals1")
	symbol0, _ := flags.GetString("symbol0")
	symbol1, _ := flags.GetString("symbol1")

	state := model.PoolState{
		Pool:       "offline",
		Asset0:     model.Asset{Symbol: symbol0, Decimals: decimals0},
		Asset1:     model.Asset{Symbol: symbol1, Decimals: decimals1},
		Reserve0:   reserve0,
		Reserve1:   reserve1,
		ObservedAt: time.Now().UTC(),
	}

	view := display.Derive(display.Snapshot{
		PoolID:     state.Pool,
		TargetText: cfg.Target,
		State:      &state,
	}, newCalculator(cfg, logger))
	if err := view.Render(cmd.OutOrStdout()); err != nil {
		return err
	}
	if view.PlanError != "" {
		return fmt.Errorf("compute plan: %s", view.PlanError)
	}
	return nil
}

func parseReserve(flags *pflag.FlagSet, name string) (*big.Int, error) {
	text, err := flags.GetString(name)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	value, ok := new(big.Int).SetString(text, 0)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("--%s must be a non-negative integer: %q", name, text)
	}
	return value, nil
}
