package entity

import "math/big"

// PoolInfo is a liquidity pool as reported by the LiquidityManager contract.
type PoolInfo struct {
	PoolID             string     `json:"poolId"`
	TokenA             string     `json:"tokenA"`
	TokenB             string     `json:"tokenB"`
	PairAddress        string     `json:"pairAddress"`
	LiquidityAmount    *big.Int   `json:"-"`
	LiquidityAmountRaw string     `json:"liquidityAmount"`
	IsActive           bool       `json:"isActive"`
	CreatedAt          int64      `json:"createdAt"`
	NetworkID          uint64     `json:"networkId"`
	Network            string     `json:"network,omitempty"`
	TokenAInfo         *TokenInfo `json:"tokenAInfo"`
	TokenBInfo         *TokenInfo `json:"tokenBInfo"`
}
