package entity

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// StableRatioPercent is the collateral ratio at or above which the peg is considered backed.
var StableRatioPercent = decimal.NewFromInt(100)

// CollateralSnapshot is the collateralization of the stable token at one point in time.
// It is derived from live reads on every request and never stored.
type CollateralSnapshot struct {
	Supply    decimal.Decimal // display units of the stable token
	Reserves  decimal.Decimal // display units of the collateral token
	Ratio     decimal.Decimal // percent, rounded to 2 places
	IsStable  bool
	Timestamp time.Time
}

// NewCollateralSnapshot derives a snapshot from raw base-unit amounts. Reserves are rescaled
// to the supply's base-unit scale before dividing, so the result does not depend on which
// decimal convention either token uses.
func NewCollateralSnapshot(supply *big.Int, supplyDecimals uint8, reserves *big.Int, reserveDecimals uint8, at time.Time) CollateralSnapshot {
	if supply == nil {
		supply = new(big.Int)
	}
	if reserves == nil {
		reserves = new(big.Int)
	}

	snap := CollateralSnapshot{
		Supply:    decimal.NewFromBigInt(supply, -int32(supplyDecimals)),
		Reserves:  decimal.NewFromBigInt(reserves, -int32(reserveDecimals)),
		Ratio:     decimal.Zero,
		Timestamp: at,
	}
	if supply.Sign() <= 0 {
		return snap
	}

	supplyBase := decimal.NewFromBigInt(supply, 0)
	rescaled := decimal.NewFromBigInt(reserves, int32(supplyDecimals)-int32(reserveDecimals))

	snap.Ratio = rescaled.Mul(StableRatioPercent).DivRound(supplyBase, 2)
	// compared unrounded: 99.995% is not stable even though it displays as 100.00
	snap.IsStable = rescaled.GreaterThanOrEqual(supplyBase)
	return snap
}
