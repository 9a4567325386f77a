package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolrebalancer/internal/chain"
	"poolrebalancer/internal/model"
)

// PoolReader resolves a pool identifier into its assets and current reserves.
type PoolReader interface {
	FetchPoolState(ctx context.Context, poolID string) (model.PoolState, error)
}

// ReaderConfig controls the reserve reader.
type ReaderConfig struct {
	// ChainID is the expected chain; zero skips the check.
	ChainID uint64
}

// Reader reads pool reserves through ERC20 balanceOf calls.
type Reader struct {
	cfg    ReaderConfig
	chain  *chain.Client
	assets *AssetCache
	logger *zap.Logger

	mu      sync.Mutex
	chainID uint64
}

func NewReader(cfg ReaderConfig, chainClient *chain.Client, assets *AssetCache, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if assets == nil {
		assets = NewAssetCache()
	}
	return &Reader{
		cfg:    cfg,
		chain:  chainClient,
		assets: assets,
		logger: logger,
	}
}

// FetchPoolState loads token0/token1, their metadata and the balances the pool holds.
func (r *Reader) FetchPoolState(ctx context.Context, poolID string) (model.PoolState, error) {
	if r.chain == nil {
		return model.PoolState{}, fmt.Errorf("chain client is nil")
	}

	pool, err := ParsePoolID(poolID)
	if err != nil {
		return model.PoolState{}, err
	}

	chainID, err := r.resolveChainID(ctx)
	if err != nil {
		return model.PoolState{}, err
	}

	code, err := r.chain.CodeAt(ctx, pool)
	if err != nil {
		return model.PoolState{}, classifyCallError("getCode", err)
	}
	if len(code) == 0 {
		return model.PoolState{}, fmt.Errorf("%w: no contract at %s", ErrInvalidPool, pool.Hex())
	}

	token0, err := r.poolToken(ctx, pool, "token0")
	if err != nil {
		return model.PoolState{}, err
	}
	token1, err := r.poolToken(ctx, pool, "token1")
	if err != nil {
		return model.PoolState{}, err
	}

	var (
		asset0, asset1     model.Asset
		reserve0, reserve1 *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asset0, err = r.asset(gctx, token0)
		return err
	})
	g.Go(func() error {
		var err error
		asset1, err = r.asset(gctx, token1)
		return err
	})
	g.Go(func() error {
		var err error
		reserve0, err = BalanceOf(gctx, r.chain, token0, pool)
		return err
	})
	g.Go(func() error {
		var err error
		reserve1, err = BalanceOf(gctx, r.chain, token1, pool)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.PoolState{}, err
	}

	r.logger.Debug("pool state fetched",
		zap.String("pool", pool.Hex()),
		zap.String("symbol0", asset0.Symbol),
		zap.String("symbol1", asset1.Symbol),
		zap.String("reserve0", reserve0.String()),
		zap.String("reserve1", reserve1.String()),
	)

	return model.PoolState{
		ChainID:    chainID,
		Pool:       pool.Hex(),
		Asset0:     asset0,
		Asset1:     asset1,
		Reserve0:   reserve0,
		Reserve1:   reserve1,
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (r *Reader) resolveChainID(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	cached := r.chainID
	r.mu.Unlock()
	if cached != 0 {
		return cached, nil
	}

	id, err := r.chain.GetChainID(ctx)
	if err != nil {
		return 0, classifyCallError("chainId", err)
	}
	if !id.IsUint64() {
		return 0, fmt.Errorf("%w: chain id does not fit in uint64: %s", ErrChainMismatch, id)
	}
	if r.cfg.ChainID != 0 && id.Uint64() != r.cfg.ChainID {
		return 0, fmt.Errorf("%w: node reports %d, expected %d", ErrChainMismatch, id.Uint64(), r.cfg.ChainID)
	}

	r.mu.Lock()
	r.chainID = id.Uint64()
	r.mu.Unlock()
	return id.Uint64(), nil
}

func (r *Reader) poolToken(ctx context.Context, pool common.Address, method string) (common.Address, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, r.chain, pool, poolABI, method)
	if err != nil {
		return common.Address{}, err
	}
	token, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s: %v", ErrInvalidPool, method, err)
	}
	return token, nil
}

func (r *Reader) asset(ctx context.Context, token common.Address) (model.Asset, error) {
	if asset, ok := r.assets.Get(token); ok {
		return asset, nil
	}
	asset, err := FetchAsset(ctx, r.chain, token, r.logger)
	if err != nil {
		r.logger.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
		return model.Asset{}, err
	}
	r.assets.Set(token, asset)
	return asset, nil
}
