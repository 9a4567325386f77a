package rebalance

import "errors"

var (
	// ErrDivisionByZero is returned instead of an infinite or undefined price.
	ErrDivisionByZero = errors.New("division by zero")

	ErrInvalidReserve = errors.New("reserve is nil or negative")

	// ErrEmptyReserve reports a pool whose constant product is zero.
	ErrEmptyReserve = errors.New("constant product is zero")

	ErrFormatting = errors.New("formatting failure")
)
