package httpclient

// DEXTokenPair is the wrapped response shape of DEX Screener.
type DEXTokenPair struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pair          *PairData  `json:"pair"`
	Pairs         []PairData `json:"pairs"`
}

// PairData contains detailed information about a trading pair.
type PairData struct {
	ChainID       string          `json:"chainId"`
	DexID         string          `json:"dexId"`
	URL           string          `json:"url"`
	PairAddress   string          `json:"pairAddress"`
	Labels        []string        `json:"labels"`
	BaseToken     DEXToken        `json:"baseToken"`
	QuoteToken    DEXToken        `json:"quoteToken"`
	PriceNative   string          `json:"priceNative"`
	PriceUsd      string          `json:"priceUsd"`
	Volume        PairVolume      `json:"volume"`
	PriceChange   PairPriceChange `json:"priceChange"`
	Liquidity     *DEXLiquidity   `json:"liquidity"`
	PairCreatedAt int64           `json:"pairCreatedAt"`
}

// LiquidityUSD returns the USD liquidity, or 0 when DEX Screener reports none.
func (p PairData) LiquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.Usd
}

// DEXToken represents a token in a trading pair.
type DEXToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// DEXLiquidity represents the liquidity information for a pair.
type DEXLiquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// PairVolume represents trading volume over different periods.
type PairVolume struct {
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

// PairPriceChange represents price change percentage over different periods.
type PairPriceChange struct {
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}
