package dex

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"poolrebalancer/internal/model"
)

// AssetCache caches immutable token metadata by address.
type AssetCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.Asset
}

func NewAssetCache() *AssetCache {
	return &AssetCache{data: make(map[common.Address]model.Asset)}
}

func (c *AssetCache) Get(address common.Address) (model.Asset, bool) {
	c.mu.RLock()
	asset, ok := c.data[address]
	c.mu.RUnlock()
	return asset, ok
}

func (c *AssetCache) Set(address common.Address, asset model.Asset) {
	c.mu.Lock()
	c.data[address] = asset
	c.mu.Unlock()
}

func (c *AssetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
