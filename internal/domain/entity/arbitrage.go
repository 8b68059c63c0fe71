package entity

import (
	"fmt"
	"time"
)

// ArbitrageAction is the direction of a peg-restoring operation.
type ArbitrageAction string

const (
	ArbitrageBuy  ArbitrageAction = "buy"
	ArbitrageSell ArbitrageAction = "sell"

	// ExecutionStatusSimulated marks results that were not executed on chain.
	ExecutionStatusSimulated = "simulated"
)

// ArbitrageRequest is a client request to restore the peg.
type ArbitrageRequest struct {
	Action ArbitrageAction `json:"action"`
	Amount float64         `json:"amount"`
}

// Validate checks the action and amount.
func (r ArbitrageRequest) Validate() error {
	if r.Action != ArbitrageBuy && r.Action != ArbitrageSell {
		return fmt.Errorf("%w: invalid action, use 'buy' or 'sell'", ErrValidation)
	}
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	return nil
}

// ArbitrageResult describes what an execution engine did with a request.
type ArbitrageResult struct {
	Operation string          `json:"operation"`
	Amount    float64         `json:"amount"`
	Action    ArbitrageAction `json:"action"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Message   string          `json:"message"`
}
