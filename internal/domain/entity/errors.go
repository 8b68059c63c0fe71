package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when a required setting (usually a contract address) is missing.
	ErrConfiguration = errors.New("configuration error")
	// ErrConnection is returned when the RPC endpoint cannot be reached.
	ErrConnection = errors.New("connection error")
	// ErrRPC is returned when an RPC probe fails or answers with a malformed response.
	ErrRPC = errors.New("rpc error")
	// ErrContractNotDeployed marks a zero or placeholder contract address.
	ErrContractNotDeployed = errors.New("contract not deployed")
	// ErrCall is returned when a read-only contract call reverts or cannot be decoded.
	ErrCall = errors.New("contract call failed")
	// ErrValidation is returned for malformed client input.
	ErrValidation = errors.New("validation error")
	// ErrAggregation is returned when a derived metric cannot be produced.
	ErrAggregation = errors.New("aggregation error")
)

// CallError describes a failed read against a single contract method.
type CallError struct {
	Contract string
	Method   string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call %s on %s: %v", e.Method, e.Contract, e.Err)
}

// Unwrap exposes both ErrCall and the underlying cause to errors.Is.
func (e *CallError) Unwrap() []error {
	return []error{ErrCall, e.Err}
}
