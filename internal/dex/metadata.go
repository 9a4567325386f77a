package dex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"poolrebalancer/internal/chain"
	"poolrebalancer/internal/model"
)

// FetchAsset loads token metadata via ERC20 calls. Decimals are required,
// symbol and name are best effort.
func FetchAsset(ctx context.Context, chainClient *chain.Client, token common.Address, logger *zap.Logger) (model.Asset, error) {
	asset := model.Asset{Address: token.Hex()}
	if chainClient == nil {
		return asset, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := ERC20ABI()
	if err != nil {
		return asset, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := ERC20Bytes32ABI()
	if err != nil {
		return asset, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := callMethod(ctx, chainClient, token, stringABI, "decimals")
	if err != nil {
		return asset, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return asset, fmt.Errorf("%w: decimals: %v", ErrInvalidPool, err)
	}
	asset.Decimals = decimals

	if values, err := callMethod(ctx, chainClient, token, stringABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			asset.Symbol = symbol
		}
	} else if values, err := callMethod(ctx, chainClient, token, bytes32ABI, "symbol"); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			asset.Symbol = symbol
		}
	} else {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := callMethod(ctx, chainClient, token, stringABI, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			asset.Name = name
		}
	} else if values, err := callMethod(ctx, chainClient, token, bytes32ABI, "name"); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			asset.Name = name
		}
	} else {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if asset.Symbol == "" {
		asset.Symbol = shortAddress(token)
	}

	return asset, nil
}

// BalanceOf returns the ERC20 balance of owner at the latest block.
func BalanceOf(ctx context.Context, chainClient *chain.Client, token common.Address, owner common.Address) (*big.Int, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 string abi: %w", err)
	}

	values, err := callMethod(ctx, chainClient, token, erc20, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	bal, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: balanceOf unexpected type %T", ErrInvalidPool, values[0])
	}
	return bal, nil
}

// callMethod packs, calls and unpacks a view method. Transport failures wrap
// ErrSourceUnavailable; answers the node gave but that cannot serve as a
// result (reverts, empty or malformed return data) wrap ErrInvalidPool.
func callMethod(ctx context.Context, chainClient *chain.Client, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := chainClient.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, classifyCallError(method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", ErrInvalidPool, method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s returned nothing", ErrInvalidPool, method)
	}
	return values, nil
}

func classifyCallError(method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("%w: call %s: %v", ErrInvalidPool, method, err)
	}
	return fmt.Errorf("%w: call %s: %v", ErrSourceUnavailable, method, err)
}

func shortAddress(address common.Address) string {
	hex := address.Hex()
	return hex[:6] + "…" + hex[len(hex)-4:]
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
