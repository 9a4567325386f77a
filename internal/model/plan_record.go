package model

// PlanRecord is a flattened observation plus its plan, written by sinks.
type PlanRecord struct {
	ChainID     uint64 `json:"chain_id"`
	Pool        string `json:"pool"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Symbol0     string `json:"symbol0"`
	Symbol1     string `json:"symbol1"`
	Decimals0   uint8  `json:"decimals0"`
	Decimals1   uint8  `json:"decimals1"`
	Reserve0    string `json:"reserve0"`
	Reserve1    string `json:"reserve1"`
	TargetPrice string `json:"target_price"`
	Direction   string `json:"direction"`
	Amount0     string `json:"amount0"`
	Amount1     string `json:"amount1"`
	PlanError   string `json:"plan_error,omitempty"`
	ObservedAt  string `json:"observed_at"`

	ExactDirection string `json:"exact_direction,omitempty"`
	ExactAmountIn  string `json:"exact_amount_in,omitempty"`
	ExactAmountOut string `json:"exact_amount_out,omitempty"`
}
