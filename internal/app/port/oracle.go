package port

import (
	"context"

	"stablecoin_monitor/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// PriceOracle reports the observed USD price of a token.
type PriceOracle interface {
	// ObservedPrice returns the price and the name of the source that produced it.
	ObservedPrice(ctx context.Context, token common.Address) (float64, string, error)
}

// ExecutionEngine carries out (or simulates) a peg-restoring operation.
type ExecutionEngine interface {
	Execute(ctx context.Context, req entity.ArbitrageRequest) (entity.ArbitrageResult, error)
}

// LiquiditySource reports liquidity of the stable token across exchanges.
type LiquiditySource interface {
	Snapshot(ctx context.Context) (entity.LiquiditySnapshot, error)
}

// ReserveMonitor reports whether collateral reserves need attention.
type ReserveMonitor interface {
	ReservesLow(ctx context.Context) (bool, error)
}
