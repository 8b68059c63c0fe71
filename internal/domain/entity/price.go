package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// PegTargetPrice is the USD price the stable token is pegged to.
	PegTargetPrice = 1.0
	// ArbitrageThreshold is the absolute deviation above which arbitrage is suggested.
	ArbitrageThreshold = 0.01
)

// PriceQuote is an observed price of a token against its peg.
type PriceQuote struct {
	TokenAddress   string    `json:"token_address,omitempty"`
	Price          float64   `json:"price_usdt"`
	TargetPrice    float64   `json:"target_price"`
	Deviation      float64   `json:"deviation"`
	NeedsArbitrage bool      `json:"needs_arbitrage"`
	Source         string    `json:"source"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewPriceQuote computes the deviation of observed from the peg.
func NewPriceQuote(tokenAddress string, observed float64, source string, at time.Time) PriceQuote {
	deviation := decimal.NewFromFloat(observed).Sub(decimal.NewFromFloat(PegTargetPrice)).Abs()
	return PriceQuote{
		TokenAddress:   tokenAddress,
		Price:          decimal.NewFromFloat(observed).Round(6).InexactFloat64(),
		TargetPrice:    PegTargetPrice,
		Deviation:      deviation.Round(6).InexactFloat64(),
		NeedsArbitrage: deviation.GreaterThan(decimal.NewFromFloat(ArbitrageThreshold)),
		Source:         source,
		Timestamp:      at,
	}
}
