package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultPool is the Base WETH/USDC pair the tool opens with.
	DefaultPool    = "0x9d489b739fa2f1987fc588809d213eaefb372f3b"
	DefaultChainID = uint64(8453)
	DefaultTarget  = "200"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	ChainID         uint64
	Pool            string
	Target          string
	DisplayDecimals uint8
	RoundTarget     bool
	Exact           bool
	Interval        time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	Out             string
	PGDSN           string
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REBALANCER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain-id", DefaultChainID)
	v.SetDefault("pool", DefaultPool)
	v.SetDefault("target", DefaultTarget)
	v.SetDefault("display-decimals", 18)
	v.SetDefault("round-target", false)
	v.SetDefault("exact", false)
	v.SetDefault("interval", 15*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	decimals := v.GetUint("display-decimals")
	if decimals > 255 {
		return Config{}, fmt.Errorf("display-decimals out of range: %d", decimals)
	}

	cfg := Config{
		RPCURL:          strings.TrimSpace(v.GetString("rpc")),
		ChainID:         v.GetUint64("chain-id"),
		Pool:            strings.TrimSpace(v.GetString("pool")),
		Target:          v.GetString("target"),
		DisplayDecimals: uint8(decimals),
		RoundTarget:     v.GetBool("round-target"),
		Exact:           v.GetBool("exact"),
		Interval:        v.GetDuration("interval"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		Out:             strings.TrimSpace(v.GetString("out")),
		PGDSN:           strings.TrimSpace(v.GetString("pg-dsn")),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}
