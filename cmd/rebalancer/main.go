package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolrebalancer/internal/chain"
	"poolrebalancer/internal/config"
	"poolrebalancer/internal/dex"
	"poolrebalancer/internal/rebalance"
	"poolrebalancer/internal/storage"
	"poolrebalancer/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rebalancer",
		Short:        "Constant-product pool rebalancing calculator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Fetch a pool once and print the swap needed to reach the target price",
		RunE:  runPlan,
	}
	addChainFlags(planCmd)
	addCalcFlags(planCmd)
	addSinkFlags(planCmd)
	root.AddCommand(planCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh a pool on an interval and read pool/target commands from stdin",
		RunE:  runWatch,
	}
	addChainFlags(watchCmd)
	addCalcFlags(watchCmd)
	addSinkFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 15*time.Second, "refresh interval, 0 disables periodic refresh")
	watchCmd.Flags().Int("max-retries", 3, "maximum retry attempts per fetch")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	root.AddCommand(watchCmd)

	calcCmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute a swap plan from reserves given on the command line",
		RunE:  runCalc,
	}
	addCalcFlags(calcCmd)
	calcCmd.Flags().String("reserve0", "", "raw reserve of asset0")
	calcCmd.Flags().String("reserve1", "", "raw reserve of asset1")
	calcCmd.Flags().Uint8("decimals0", 18, "decimals of asset0")
	calcCmd.Flags().Uint8("decimals1", 18, "decimals of asset1")
	calcCmd.Flags().String("symbol0", "TOKEN0", "symbol of asset0")
	calcCmd.Flags().String("symbol1", "TOKEN1", "symbol of asset1")
	root.AddCommand(calcCmd)

	return root
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "JSON-RPC URL")
	cmd.Flags().Uint64("chain-id", config.DefaultChainID, "expected chain id, 0 accepts any")
	cmd.Flags().String("pool", config.DefaultPool, "pool address")
}

func addCalcFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", config.DefaultTarget, "target price in asset1 per asset0")
	cmd.Flags().Uint8("display-decimals", 18, "decimals used to display swap amounts")
	cmd.Flags().Bool("round-target", false, "round the target price to the nearest integer")
	cmd.Flags().Bool("exact", false, "also print the exact constant-product trade")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addSinkFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "append plan records to this JSONL file")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for plan snapshots")
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newCalculator(cfg config.Config, logger *zap.Logger) *rebalance.Calculator {
	return rebalance.NewCalculator(rebalance.Config{
		DisplayDecimals: cfg.DisplayDecimals,
		RoundTarget:     cfg.RoundTarget,
		Exact:           cfg.Exact,
	}, logger)
}

func newReader(ctx context.Context, cfg config.Config, logger *zap.Logger) (*dex.Reader, func(), error) {
	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	reader := dex.NewReader(dex.ReaderConfig{ChainID: cfg.ChainID}, chainClient, dex.NewAssetCache(), logger)
	return reader, chainClient.Close, nil
}

// openSinks returns the configured plan sinks and a func releasing them.
func openSinks(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]storage.Sink, func(), error) {
	var sinks []storage.Sink
	closeFn := func() {}

	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
		logger.Info("jsonl sink enabled", zap.String("out", cfg.Out))
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		sinks = append(sinks, store)
		closeFn = store.Close
		logger.Info("postgres sink enabled")
	}

	return sinks, closeFn, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
