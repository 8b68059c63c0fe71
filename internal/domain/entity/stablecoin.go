package entity

import "math/big"

// StablecoinConfig is the creation config embedded in a StablecoinFactory record.
type StablecoinConfig struct {
	Name               string   `json:"name"`
	Symbol             string   `json:"symbol"`
	CollateralToken    string   `json:"collateralToken"`
	InitialSupply      *big.Int `json:"-"`
	InitialSupplyRaw   string   `json:"initialSupply"`
	CollateralRatio    *big.Int `json:"-"`
	CollateralRatioRaw string   `json:"collateralRatio"`
	IsActive           bool     `json:"isActive"`
	CreatedAt          int64    `json:"createdAt"`
}

// StablecoinInfo is a stablecoin record as reported by the StablecoinFactory contract.
type StablecoinInfo struct {
	StablecoinID            string           `json:"stablecoinId"`
	StablecoinAddress       string           `json:"stablecoinAddress"`
	LiquidityManagerAddress string           `json:"liquidityManagerAddress"`
	PoolID                  string           `json:"poolId"`
	Config                  StablecoinConfig `json:"config"`
	TokenInfo               *TokenInfo       `json:"tokenInfo"`
}
