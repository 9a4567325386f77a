package dex

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParsePoolID converts an operator supplied pool identifier into an address.
func ParsePoolID(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, fmt.Errorf("%w: empty pool id", ErrInvalidPool)
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%w: not a hex address: %s", ErrInvalidPool, input)
	}
	return common.HexToAddress(input), nil
}
