package entity

import "time"

// VenueLiquidity is the liquidity of the stable token on a single exchange.
type VenueLiquidity struct {
	PoolAddress   string  `json:"pool_address"`
	LiquidityUSDT float64 `json:"liquidity_usdt"`
	Volume24h     float64 `json:"volume_24h"`
	FeeTier       float64 `json:"fee_tier"`
}

// LiquiditySnapshot aggregates venue liquidity.
type LiquiditySnapshot struct {
	Venues         map[string]VenueLiquidity
	TotalLiquidity float64
	TotalVolume24h float64
	Timestamp      time.Time
	Source         string
}
