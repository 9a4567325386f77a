package dex

import "errors"

var (
	// ErrSourceUnavailable reports a transport failure talking to the node.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrInvalidPool reports an identifier that does not resolve to a pool of two ERC20 tokens.
	ErrInvalidPool = errors.New("invalid pool")

	ErrChainMismatch = errors.New("chain id mismatch")
)
