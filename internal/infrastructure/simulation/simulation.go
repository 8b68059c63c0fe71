// Package simulation holds stand-ins for the market-facing parts of the monitor.
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	Source = "simulated"

	priceSpread      = 0.02
	lowReserveOdds   = 0.1
	arbitrageMessage = "Arbitrage operation simulated successfully"
)

// Random is a goroutine-safe wrapper around *rand.Rand.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom seeds a Random. Use a fixed seed for reproducible runs.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a value in [0, 1).
func (r *Random) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Oracle reports a price drifting uniformly within two cents of the peg.
type Oracle struct {
	rand *Random
}

// NewOracle creates a simulated price oracle.
func NewOracle(r *Random) *Oracle {
	return &Oracle{rand: r}
}

var _ port.PriceOracle = (*Oracle)(nil)

// ObservedPrice implements port.PriceOracle.
func (o *Oracle) ObservedPrice(ctx context.Context, _ common.Address) (float64, string, error) {
	if err := ctx.Err(); err != nil {
		return 0, Source, err
	}
	offset := (o.rand.Float64()*2 - 1) * priceSpread
	price := decimal.NewFromFloat(entity.PegTargetPrice).Add(decimal.NewFromFloat(offset)).Round(6)
	return price.InexactFloat64(), Source, nil
}

// ExecutionEngine describes the operation a request would trigger without sending it.
type ExecutionEngine struct {
	now func() time.Time
}

// NewExecutionEngine creates a simulated execution engine.
func NewExecutionEngine() *ExecutionEngine {
	return &ExecutionEngine{now: func() time.Time { return time.Now().UTC() }}
}

var _ port.ExecutionEngine = (*ExecutionEngine)(nil)

// Execute implements port.ExecutionEngine.
func (e *ExecutionEngine) Execute(ctx context.Context, req entity.ArbitrageRequest) (entity.ArbitrageResult, error) {
	if err := req.Validate(); err != nil {
		return entity.ArbitrageResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return entity.ArbitrageResult{}, err
	}

	amount := decimal.NewFromFloat(req.Amount).String()
	var operation string
	switch req.Action {
	case entity.ArbitrageBuy:
		operation = fmt.Sprintf("Buy %s BRZStable on the market and redeem for USDT", amount)
	case entity.ArbitrageSell:
		operation = fmt.Sprintf("Mint %s BRZStable with USDT and sell on the market", amount)
	}

	return entity.ArbitrageResult{
		Operation: operation,
		Amount:    req.Amount,
		Action:    req.Action,
		Status:    entity.ExecutionStatusSimulated,
		Timestamp: e.now(),
		Message:   arbitrageMessage,
	}, nil
}

// Liquidity reports fixed liquidity on two venues.
type Liquidity struct {
	now func() time.Time
}

// NewLiquidity creates a simulated liquidity source.
func NewLiquidity() *Liquidity {
	return &Liquidity{now: func() time.Time { return time.Now().UTC() }}
}

var _ port.LiquiditySource = (*Liquidity)(nil)

// Snapshot implements port.LiquiditySource.
func (l *Liquidity) Snapshot(ctx context.Context) (entity.LiquiditySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return entity.LiquiditySnapshot{}, err
	}
	return entity.LiquiditySnapshot{
		Venues: map[string]entity.VenueLiquidity{
			"pancakeswap_v3": {PoolAddress: "0x...", LiquidityUSDT: 50000, Volume24h: 12000, FeeTier: 0.05},
			"biswap":         {PoolAddress: "0x...", LiquidityUSDT: 25000, Volume24h: 8000, FeeTier: 0.30},
		},
		TotalLiquidity: 75000,
		TotalVolume24h: 20000,
		Timestamp:      l.now(),
		Source:         Source,
	}, nil
}

// ReserveMonitor flags low reserves on roughly one check in ten.
type ReserveMonitor struct {
	rand *Random
}

// NewReserveMonitor creates a simulated reserve monitor.
func NewReserveMonitor(r *Random) *ReserveMonitor {
	return &ReserveMonitor{rand: r}
}

var _ port.ReserveMonitor = (*ReserveMonitor)(nil)

// ReservesLow implements port.ReserveMonitor.
func (m *ReserveMonitor) ReservesLow(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return m.rand.Float64() < lowReserveOdds, nil
}
