// Package oracle provides price and liquidity sources backed by real market data.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/infrastructure/httpclient"

	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	SourceDEXScreener = "dexscreener"
	SourceOnChain     = "onchain"

	preloadConcurrency = 5
)

var stablecoinSymbols = map[string]struct{}{
	"USDT":  {},
	"USDC":  {},
	"DAI":   {},
	"BUSD":  {},
	"FDUSD": {},
}

// DEXScreenerOracle quotes tokens from DEX Screener pairs. Prices are cached for the
// configured TTL.
type DEXScreenerOracle struct {
	client    httpclient.DEXScreenerClient
	chainID   string
	registry  port.ContractRegistry
	prices    *cache.Cache
	batchSize int
	logger    port.Logger
}

// NewDEXScreenerOracle creates a DEXScreenerOracle for the given DEX Screener chain.
func NewDEXScreenerOracle(
	client httpclient.DEXScreenerClient,
	chainID string,
	registry port.ContractRegistry,
	ttl time.Duration,
	batchSize int,
	logger port.Logger,
) *DEXScreenerOracle {
	if batchSize <= 0 {
		batchSize = 30
	}
	return &DEXScreenerOracle{
		client:    client,
		chainID:   chainID,
		registry:  registry,
		prices:    cache.New(ttl, 2*ttl),
		batchSize: batchSize,
		logger:    logger,
	}
}

var _ port.PriceOracle = (*DEXScreenerOracle)(nil)

// ObservedPrice implements port.PriceOracle. The zero address stands for the registry's
// stable token.
func (o *DEXScreenerOracle) ObservedPrice(ctx context.Context, token common.Address) (float64, string, error) {
	token, err := resolveToken(o.registry, token)
	if err != nil {
		return 0, SourceDEXScreener, err
	}

	key := cacheKey(token)
	if cached, found := o.prices.Get(key); found {
		return cached.(float64), SourceDEXScreener, nil
	}

	if err := o.fetch(ctx, []string{token.Hex()}); err != nil {
		return 0, SourceDEXScreener, err
	}
	if cached, found := o.prices.Get(key); found {
		return cached.(float64), SourceDEXScreener, nil
	}
	return 0, SourceDEXScreener, fmt.Errorf("no DEX Screener pair with a usable price for %s on %s", token.Hex(), o.chainID)
}

// Preload fetches and caches prices for tokens in batches. Every batch runs; failures are
// joined.
func (o *DEXScreenerOracle) Preload(ctx context.Context, tokens []common.Address) error {
	addresses := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != (common.Address{}) {
			addresses = append(addresses, t.Hex())
		}
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(preloadConcurrency)
	for _, batch := range batchAddresses(addresses, o.batchSize) {
		g.Go(func() error {
			if err := o.fetch(ctx, batch); err != nil {
				o.logger.Error("Failed to preload DEX Screener prices", "chain", o.chainID, "tokens", len(batch), "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (o *DEXScreenerOracle) fetch(ctx context.Context, addresses []string) error {
	pairs, err := o.client.GetTokenPairsByAddresses(ctx, o.chainID, addresses)
	if err != nil {
		return fmt.Errorf("%w: DEX Screener: %w", entity.ErrConnection, err)
	}

	for _, addr := range addresses {
		best := selectBestPair(pairs, addr)
		if best == nil {
			o.logger.Warn("No priced DEX Screener pair for token", "chain", o.chainID, "token", addr, "pairs", len(pairs))
			continue
		}
		price, err := strconv.ParseFloat(best.PriceUsd, 64)
		if err != nil {
			o.logger.Warn("Failed to parse DEX Screener price", "token", addr, "price", best.PriceUsd, "error", err)
			continue
		}
		o.prices.SetDefault(strings.ToLower(addr), price)
		o.logger.Debug("Cached DEX Screener price",
			"token", addr,
			"pair", best.PairAddress,
			"dex", best.DexID,
			"quote", best.QuoteToken.Symbol,
			"liquidityUsd", best.LiquidityUSD(),
			"priceUsd", price)
	}
	return nil
}

// selectBestPair prefers the deepest pair quoted in a stablecoin and falls back to the
// deepest pair overall. Pairs without a USD price are ignored.
func selectBestPair(pairs []httpclient.PairData, baseToken string) *httpclient.PairData {
	var bestOverall, bestStable *httpclient.PairData
	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseToken) {
			continue
		}
		if pair.PriceUsd == "" || pair.PriceUsd == "0" {
			continue
		}

		if _, ok := stablecoinSymbols[strings.ToUpper(pair.QuoteToken.Symbol)]; ok {
			if bestStable == nil || pair.LiquidityUSD() > bestStable.LiquidityUSD() {
				bestStable = pair
			}
		}
		if bestOverall == nil || pair.LiquidityUSD() > bestOverall.LiquidityUSD() {
			bestOverall = pair
		}
	}
	if bestStable != nil {
		return bestStable
	}
	return bestOverall
}

func batchAddresses(addresses []string, size int) [][]string {
	var batches [][]string
	for i := 0; i < len(addresses); i += size {
		end := min(i+size, len(addresses))
		batches = append(batches, addresses[i:end])
	}
	return batches
}

func cacheKey(token common.Address) string {
	return strings.ToLower(token.Hex())
}

func resolveToken(registry port.ContractRegistry, token common.Address) (common.Address, error) {
	if token != (common.Address{}) {
		return token, nil
	}
	if registry == nil {
		return common.Address{}, fmt.Errorf("%w: token address required", entity.ErrValidation)
	}
	stable := registry.Snapshot().StableToken
	if stable == "" {
		return common.Address{}, fmt.Errorf("%w: stable token address not configured", entity.ErrValidation)
	}
	return common.HexToAddress(stable), nil
}
