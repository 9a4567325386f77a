package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolrebalancer/internal/display"
	"poolrebalancer/internal/model"
)

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader, closeReader, err := newReader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeReader()

	sinks, closeSinks, err := openSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	logger.Info("plan start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("pool", cfg.Pool),
		zap.String("target", cfg.Target),
	)

	state, fetchErr := reader.FetchPoolState(ctx, cfg.Pool)
	snapshot := display.Snapshot{PoolID: cfg.Pool, TargetText: cfg.Target, FetchErr: fetchErr}
	if fetchErr == nil {
		snapshot.State = &state
	}

	view := display.Derive(snapshot, newCalculator(cfg, logger))
	if err := view.Render(cmd.OutOrStdout()); err != nil {
		return err
	}
	if fetchErr != nil {
		return fmt.Errorf("fetch pool state: %w", fetchErr)
	}

	if record, ok := display.Record(snapshot, view); ok {
		for _, sink := range sinks {
			if err := sink.PutPlanBatch(ctx, []model.PlanRecord{record}); err != nil {
				return fmt.Errorf("store plan: %w", err)
			}
		}
	}
	return nil
}
