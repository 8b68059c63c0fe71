package simulation

import (
	"context"
	"testing"

	"stablecoin_monitor/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracle_StaysWithinSpread(t *testing.T) {
	o := NewOracle(NewRandom(42))
	for range 500 {
		price, source, err := o.ObservedPrice(context.Background(), common.Address{})
		require.NoError(t, err)
		assert.Equal(t, Source, source)
		assert.GreaterOrEqual(t, price, 0.98)
		assert.LessOrEqual(t, price, 1.02)
		assert.InDelta(t, price, float64(int64(price*1e6+0.5))/1e6, 1e-12, "six decimal places")
	}
}

func TestOracle_SeededRunsRepeat(t *testing.T) {
	a, b := NewOracle(NewRandom(7)), NewOracle(NewRandom(7))
	for range 10 {
		pa, _, _ := a.ObservedPrice(context.Background(), common.Address{})
		pb, _, _ := b.ObservedPrice(context.Background(), common.Address{})
		assert.Equal(t, pa, pb)
	}
}

func TestExecutionEngine(t *testing.T) {
	e := NewExecutionEngine()
	ctx := context.Background()

	res, err := e.Execute(ctx, entity.ArbitrageRequest{Action: entity.ArbitrageBuy, Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, "Buy 10 BRZStable on the market and redeem for USDT", res.Operation)
	assert.Equal(t, entity.ExecutionStatusSimulated, res.Status)
	assert.Equal(t, "Arbitrage operation simulated successfully", res.Message)
	assert.False(t, res.Timestamp.IsZero())

	res, err = e.Execute(ctx, entity.ArbitrageRequest{Action: entity.ArbitrageSell, Amount: 2.5})
	require.NoError(t, err)
	assert.Equal(t, "Mint 2.5 BRZStable with USDT and sell on the market", res.Operation)
	assert.Equal(t, entity.ArbitrageSell, res.Action)

	_, err = e.Execute(ctx, entity.ArbitrageRequest{Action: "hold", Amount: 1})
	assert.ErrorIs(t, err, entity.ErrValidation)
	_, err = e.Execute(ctx, entity.ArbitrageRequest{Action: entity.ArbitrageBuy})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestLiquidity(t *testing.T) {
	snap, err := NewLiquidity().Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50000.0, snap.Venues["pancakeswap_v3"].LiquidityUSDT)
	assert.Equal(t, 0.30, snap.Venues["biswap"].FeeTier)
	assert.Equal(t, 75000.0, snap.TotalLiquidity)
	assert.Equal(t, 20000.0, snap.TotalVolume24h)
	assert.Equal(t, Source, snap.Source)
}

func TestReserveMonitor_RoughlyOneInTen(t *testing.T) {
	m := NewReserveMonitor(NewRandom(1))
	low := 0
	for range 10000 {
		flagged, err := m.ReservesLow(context.Background())
		require.NoError(t, err)
		if flagged {
			low++
		}
	}
	assert.InDelta(t, 1000, low, 150)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.ReservesLow(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
