package entity

import "math/big"

// TokenInfo holds the details of a specific ERC20 token, read from chain.
type TokenInfo struct {
	Address         string   `json:"address"`
	Name            string   `json:"name"`
	Symbol          string   `json:"symbol"`
	Decimals        uint8    `json:"decimals"`
	TotalSupply     *big.Int `json:"-"`
	TotalSupplyRaw  string   `json:"totalSupply"`
	FormattedSupply string   `json:"formattedSupply"`
}
