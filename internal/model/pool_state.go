package model

import (
	"math/big"
	"time"
)

// PoolState is one observation of a pool's two assets and their balances.
type PoolState struct {
	ChainID    uint64
	Pool       string
	Asset0     Asset
	Asset1     Asset
	Reserve0   *big.Int
	Reserve1   *big.Int
	ObservedAt time.Time
}
