package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolrebalancer/internal/display"
	"poolrebalancer/internal/monitor"
)

func runWatch(cmd *cobra.Command, _ []string) error {
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

	runner := monitor.NewRunner(monitor.Config{
		Interval:     cfg.Interval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, reader, display.NewSession(cfg.Pool, cfg.Target), newCalculator(cfg, logger), sinks, cmd.OutOrStdout(), logger)

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("pool", cfg.Pool),
		zap.Duration("interval", cfg.Interval),
		zap.Int("sinks", len(sinks)),
	)

	err = runner.Run(ctx, cmd.InOrStdin())
	if errors.Is(err, context.Canceled) {
		logger.Info("watch stopped")
		return nil
	}
	return err
}
