package port

import (
	"context"
	"iter"

	"stablecoin_monitor/internal/domain/entity"
)

// StablecoinAggregator composes contract reads into derived metrics.
type StablecoinAggregator interface {
	TokenInfo(ctx context.Context, address string) (*entity.TokenInfo, error)
	CollateralSnapshot(ctx context.Context) (*entity.CollateralSnapshot, error)
	ListPools(ctx context.Context) (iter.Seq[entity.PoolInfo], error)
	ListStablecoins(ctx context.Context) (iter.Seq[entity.StablecoinInfo], error)
	PriceDeviation(ctx context.Context, token string) (entity.PriceQuote, error)
	DefaultPair() entity.ContractAddresses
}

// ContractRegistry holds the process-wide contract addresses.
type ContractRegistry interface {
	Snapshot() entity.ContractAddresses
	Update(liquidityManager, stablecoinFactory *string) (entity.ContractAddresses, error)
}

// MonitorService produces the alert summary.
type MonitorService interface {
	Check(ctx context.Context) (entity.MonitorReport, error)
}

// HealthService produces the readiness report.
type HealthService interface {
	Check(ctx context.Context) (entity.HealthReport, error)
}
