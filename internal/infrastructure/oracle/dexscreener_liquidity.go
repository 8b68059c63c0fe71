package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/infrastructure/httpclient"

	"github.com/shopspring/decimal"
)

// DEXScreenerLiquidity reports stable token liquidity per DEX from DEX Screener pairs.
type DEXScreenerLiquidity struct {
	client   httpclient.DEXScreenerClient
	chainID  string
	registry port.ContractRegistry
	now      func() time.Time
}

// NewDEXScreenerLiquidity creates a DEXScreenerLiquidity.
func NewDEXScreenerLiquidity(client httpclient.DEXScreenerClient, chainID string, registry port.ContractRegistry) *DEXScreenerLiquidity {
	return &DEXScreenerLiquidity{
		client:   client,
		chainID:  chainID,
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ port.LiquiditySource = (*DEXScreenerLiquidity)(nil)

// Snapshot implements port.LiquiditySource. Venues are keyed by DEX id; a DEX with several
// pairs reports their sums and the address of its deepest pool.
func (l *DEXScreenerLiquidity) Snapshot(ctx context.Context) (entity.LiquiditySnapshot, error) {
	stable := l.registry.Snapshot().StableToken
	if stable == "" {
		return entity.LiquiditySnapshot{}, fmt.Errorf("%w: stable token address not configured", entity.ErrValidation)
	}

	pairs, err := l.client.GetTokenPairsByAddresses(ctx, l.chainID, []string{stable})
	if err != nil {
		return entity.LiquiditySnapshot{}, fmt.Errorf("%w: DEX Screener: %w", entity.ErrConnection, err)
	}

	venues := make(map[string]entity.VenueLiquidity)
	deepest := make(map[string]float64)
	total, volume := decimal.Zero, decimal.Zero
	for _, pair := range pairs {
		if !strings.EqualFold(pair.BaseToken.Address, stable) && !strings.EqualFold(pair.QuoteToken.Address, stable) {
			continue
		}
		liq := pair.LiquidityUSD()
		v := venues[pair.DexID]
		v.LiquidityUSDT = decimal.NewFromFloat(v.LiquidityUSDT).Add(decimal.NewFromFloat(liq)).InexactFloat64()
		v.Volume24h = decimal.NewFromFloat(v.Volume24h).Add(decimal.NewFromFloat(pair.Volume.H24)).InexactFloat64()
		if best, seen := deepest[pair.DexID]; !seen || liq > best {
			deepest[pair.DexID] = liq
			v.PoolAddress = pair.PairAddress
		}
		venues[pair.DexID] = v

		total = total.Add(decimal.NewFromFloat(liq))
		volume = volume.Add(decimal.NewFromFloat(pair.Volume.H24))
	}

	return entity.LiquiditySnapshot{
		Venues:         venues,
		TotalLiquidity: total.InexactFloat64(),
		TotalVolume24h: volume.InexactFloat64(),
		Timestamp:      l.now(),
		Source:         SourceDEXScreener,
	}, nil
}
