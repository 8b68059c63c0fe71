package service

import (
	"context"
	"fmt"
	"iter"
	"math/big"
	"sync/atomic"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/infrastructure/network/contract"
	networkdefinition "stablecoin_monitor/internal/infrastructure/network/definition"
	"stablecoin_monitor/internal/pkg/metrics"
	"stablecoin_monitor/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// PairDecimals are the decimal conventions of the default stable/collateral pair.
type PairDecimals struct {
	Stable     uint8
	Collateral uint8
}

// AggregatorServiceImpl implements port.StablecoinAggregator.
type AggregatorServiceImpl struct {
	clientProvider port.BlockchainClientProvider
	reader         *contract.Reader
	registry       port.ContractRegistry
	oracle         port.PriceOracle
	decimals       PairDecimals
	logger         port.Logger
	now            func() time.Time
}

// NewAggregatorService creates a new instance of AggregatorServiceImpl.
func NewAggregatorService(
	cp port.BlockchainClientProvider,
	reader *contract.Reader,
	registry port.ContractRegistry,
	oracle port.PriceOracle,
	decimals PairDecimals,
	l port.Logger,
) *AggregatorServiceImpl {
	return &AggregatorServiceImpl{
		clientProvider: cp,
		reader:         reader,
		registry:       registry,
		oracle:         oracle,
		decimals:       decimals,
		logger:         l,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ port.StablecoinAggregator = (*AggregatorServiceImpl)(nil)

// DefaultPair returns the registry snapshot used by the stable/collateral views.
func (s *AggregatorServiceImpl) DefaultPair() entity.ContractAddresses {
	return s.registry.Snapshot()
}

// TokenInfo reads name, symbol, decimals and totalSupply concurrently. Any failed read
// fails the whole result.
func (s *AggregatorServiceImpl) TokenInfo(ctx context.Context, address string) (*entity.TokenInfo, error) {
	if _, ok := utils.ParseContractAddress(address); !ok {
		return nil, fmt.Errorf("%w: invalid token address %q", entity.ErrValidation, address)
	}
	client, err := s.clientProvider.GetClient(ctx)
	if err != nil {
		return nil, err
	}
	return s.tokenInfo(ctx, client, address)
}

func (s *AggregatorServiceImpl) tokenInfo(ctx context.Context, caller port.ContractCaller, address string) (*entity.TokenInfo, error) {
	token := s.reader.Bind(caller, address, contract.ERC20())
	if token == nil {
		return nil, fmt.Errorf("%w: token %q", entity.ErrContractNotDeployed, address)
	}

	var (
		name, symbol string
		decimals     uint8
		supply       *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		name, err = token.CallString(gctx, "name")
		return err
	})
	g.Go(func() (err error) {
		symbol, err = token.CallString(gctx, "symbol")
		return err
	})
	g.Go(func() (err error) {
		decimals, err = token.CallUint8(gctx, "decimals")
		return err
	})
	g.Go(func() (err error) {
		supply, err = token.CallBigInt(gctx, "totalSupply")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &entity.TokenInfo{
		Address:         token.Address().Hex(),
		Name:            name,
		Symbol:          symbol,
		Decimals:        decimals,
		TotalSupply:     supply,
		TotalSupplyRaw:  utils.BigIntString(supply),
		FormattedSupply: utils.FormatBigInt(supply, decimals),
	}, nil
}

// tokenInfoOrNil is tokenInfo for optional enrichment: failures are logged and yield nil.
func (s *AggregatorServiceImpl) tokenInfoOrNil(ctx context.Context, caller port.ContractCaller, address common.Address) *entity.TokenInfo {
	info, err := s.tokenInfo(ctx, caller, address.Hex())
	if err != nil {
		s.logger.Debug("Token metadata unavailable", "token", address.Hex(), "error", err)
		return nil
	}
	return info
}

// CollateralSnapshot reads supply and reserves of the stable token.
func (s *AggregatorServiceImpl) CollateralSnapshot(ctx context.Context) (*entity.CollateralSnapshot, error) {
	pair := s.registry.Snapshot()
	if !pair.DefaultPairConfigured() {
		return nil, fmt.Errorf("%w: contract addresses not configured", entity.ErrAggregation)
	}

	client, err := s.clientProvider.GetClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrAggregation, err)
	}
	stable := s.reader.Bind(client, pair.StableToken, contract.StableToken())
	if stable == nil {
		return nil, fmt.Errorf("%w: stable token contract unavailable", entity.ErrAggregation)
	}

	var supply, reserves *big.Int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		supply, err = stable.CallBigInt(gctx, "totalSupply")
		return err
	})
	g.Go(func() (err error) {
		reserves, err = stable.CallBigInt(gctx, "getUSDTBalance")
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to read collateral state", "contract", pair.StableToken, "error", err)
		return nil, fmt.Errorf("%w: %w", entity.ErrAggregation, err)
	}

	snap := entity.NewCollateralSnapshot(supply, s.decimals.Stable, reserves, s.decimals.Collateral, s.now())
	return &snap, nil
}

// ListPools enumerates pools of the LiquidityManager. Ids are read up front; details are read
// while ranging and unreadable pools are skipped. The sequence can be ranged once.
func (s *AggregatorServiceImpl) ListPools(ctx context.Context) (iter.Seq[entity.PoolInfo], error) {
	address := s.registry.Snapshot().LiquidityManager
	if _, ok := utils.ParseContractAddress(address); !ok {
		return nil, fmt.Errorf("%w: liquidity manager", entity.ErrContractNotDeployed)
	}
	client, err := s.clientProvider.GetClient(ctx)
	if err != nil {
		return nil, err
	}
	manager := s.reader.Bind(client, address, contract.LiquidityManager())
	if manager == nil {
		return nil, fmt.Errorf("%w: liquidity manager", entity.ErrContractNotDeployed)
	}

	ids, err := manager.CallBytes32List(ctx, "getAllPoolIds")
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Pool ids loaded", "count", len(ids))

	return singleUse(func(yield func(entity.PoolInfo) bool) {
		for _, id := range ids {
			pool, err := s.poolInfo(ctx, client, manager, id)
			if err != nil {
				s.logger.Warn("Skipping pool", "poolId", contract.Bytes32Hex(id), "error", err)
				metrics.ListingSkipped.WithLabelValues("pools").Inc()
				continue
			}
			if !yield(pool) {
				return
			}
		}
	}), nil
}

func (s *AggregatorServiceImpl) poolInfo(ctx context.Context, caller port.ContractCaller, manager *contract.ContractView, id [32]byte) (entity.PoolInfo, error) {
	tuple, err := manager.CallTuple(ctx, "getPoolInfo", id)
	if err != nil {
		return entity.PoolInfo{}, err
	}

	d := tupleDecoder{tuple: tuple}
	pool := entity.PoolInfo{PoolID: contract.Bytes32Hex(id)}
	tokenA := d.addressAt(0)
	tokenB := d.addressAt(1)
	pool.PairAddress = d.addressAt(2).Hex()
	pool.LiquidityAmount = d.bigIntAt(3)
	pool.IsActive = d.boolAt(4)
	createdAt := d.int64At(5)
	networkID := d.uint64At(6)
	if d.err != nil {
		return entity.PoolInfo{}, fmt.Errorf("decode getPoolInfo: %w", d.err)
	}

	pool.TokenA = tokenA.Hex()
	pool.TokenB = tokenB.Hex()
	pool.LiquidityAmountRaw = utils.BigIntString(pool.LiquidityAmount)
	pool.CreatedAt = createdAt
	pool.NetworkID = networkID
	if def, ok := networkdefinition.LookupByChainID(pool.NetworkID); ok {
		pool.Network = def.Identifier
	}
	pool.TokenAInfo = s.tokenInfoOrNil(ctx, caller, tokenA)
	pool.TokenBInfo = s.tokenInfoOrNil(ctx, caller, tokenB)
	return pool, nil
}

// ListStablecoins enumerates stablecoins of the StablecoinFactory, with the same contract as
// ListPools.
func (s *AggregatorServiceImpl) ListStablecoins(ctx context.Context) (iter.Seq[entity.StablecoinInfo], error) {
	address := s.registry.Snapshot().StablecoinFactory
	if _, ok := utils.ParseContractAddress(address); !ok {
		return nil, fmt.Errorf("%w: stablecoin factory", entity.ErrContractNotDeployed)
	}
	client, err := s.clientProvider.GetClient(ctx)
	if err != nil {
		return nil, err
	}
	factory := s.reader.Bind(client, address, contract.StablecoinFactory())
	if factory == nil {
		return nil, fmt.Errorf("%w: stablecoin factory", entity.ErrContractNotDeployed)
	}

	ids, err := factory.CallBytes32List(ctx, "getAllStablecoinIds")
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Stablecoin ids loaded", "count", len(ids))

	return singleUse(func(yield func(entity.StablecoinInfo) bool) {
		for _, id := range ids {
			info, err := s.stablecoinInfo(ctx, client, factory, id)
			if err != nil {
				s.logger.Warn("Skipping stablecoin", "stablecoinId", contract.Bytes32Hex(id), "error", err)
				metrics.ListingSkipped.WithLabelValues("stablecoins").Inc()
				continue
			}
			if !yield(info) {
				return
			}
		}
	}), nil
}

func (s *AggregatorServiceImpl) stablecoinInfo(ctx context.Context, caller port.ContractCaller, factory *contract.ContractView, id [32]byte) (entity.StablecoinInfo, error) {
	tuple, err := factory.CallTuple(ctx, "getStablecoinInfo", id)
	if err != nil {
		return entity.StablecoinInfo{}, err
	}

	d := tupleDecoder{tuple: tuple}
	stablecoinID := d.bytes32At(0)
	stablecoinAddr := d.addressAt(1)
	managerAddr := d.addressAt(2)
	poolID := d.bytes32At(3)

	c := tupleDecoder{tuple: d.field(4)}
	if d.err != nil {
		return entity.StablecoinInfo{}, fmt.Errorf("decode getStablecoinInfo: %w", d.err)
	}
	cfg := entity.StablecoinConfig{
		Name:            c.stringAt(0),
		Symbol:          c.stringAt(1),
		CollateralToken: c.addressAt(2).Hex(),
		InitialSupply:   c.bigIntAt(3),
		CollateralRatio: c.bigIntAt(4),
		IsActive:        c.boolAt(5),
	}
	createdAt := c.int64At(6)
	if c.err != nil {
		return entity.StablecoinInfo{}, fmt.Errorf("decode getStablecoinInfo config: %w", c.err)
	}
	cfg.InitialSupplyRaw = utils.BigIntString(cfg.InitialSupply)
	cfg.CollateralRatioRaw = utils.BigIntString(cfg.CollateralRatio)
	cfg.CreatedAt = createdAt

	return entity.StablecoinInfo{
		StablecoinID:            contract.Bytes32Hex(stablecoinID),
		StablecoinAddress:       stablecoinAddr.Hex(),
		LiquidityManagerAddress: managerAddr.Hex(),
		PoolID:                  contract.Bytes32Hex(poolID),
		Config:                  cfg,
		TokenInfo:               s.tokenInfoOrNil(ctx, caller, stablecoinAddr),
	}, nil
}

// PriceDeviation quotes token against the peg. An empty token asks the oracle for the
// default stable token.
func (s *AggregatorServiceImpl) PriceDeviation(ctx context.Context, token string) (entity.PriceQuote, error) {
	var addr common.Address
	if token != "" {
		parsed, ok := utils.ParseContractAddress(token)
		if !ok {
			return entity.PriceQuote{}, fmt.Errorf("%w: invalid token address %q", entity.ErrValidation, token)
		}
		addr = parsed
	}

	price, source, err := s.oracle.ObservedPrice(ctx, addr)
	if err != nil {
		return entity.PriceQuote{}, fmt.Errorf("%w: price: %w", entity.ErrAggregation, err)
	}

	quoted := ""
	if addr != (common.Address{}) {
		quoted = addr.Hex()
	}
	return entity.NewPriceQuote(quoted, price, source, s.now()), nil
}

func singleUse[T any](seq iter.Seq[T]) iter.Seq[T] {
	var used atomic.Bool
	return func(yield func(T) bool) {
		if used.Swap(true) {
			return
		}
		seq(yield)
	}
}

// tupleDecoder reads tuple fields by position and keeps the first error.
type tupleDecoder struct {
	tuple any
	err   error
}

func (d *tupleDecoder) field(i int) any {
	if d.err != nil {
		return nil
	}
	v, err := contract.TupleField(d.tuple, i)
	if err != nil {
		d.err = err
	}
	return v
}

func (d *tupleDecoder) addressAt(i int) common.Address {
	v := d.field(i)
	if d.err != nil {
		return common.Address{}
	}
	out, err := contract.AsAddress(v)
	if err != nil {
		d.err = fmt.Errorf("field %d: %w", i, err)
	}
	return out
}

func (d *tupleDecoder) bigIntAt(i int) *big.Int {
	v := d.field(i)
	if d.err != nil {
		return nil
	}
	out, err := contract.AsBigInt(v)
	if err != nil {
		d.err = fmt.Errorf("field %d: %w", i, err)
	}
	return out
}

func (d *tupleDecoder) int64At(i int) int64 {
	v := d.bigIntAt(i)
	if d.err != nil {
		return 0
	}
	if !v.IsInt64() {
		d.err = fmt.Errorf("field %d: %s overflows int64", i, v)
		return 0
	}
	return v.Int64()
}

func (d *tupleDecoder) uint64At(i int) uint64 {
	v := d.bigIntAt(i)
	if d.err != nil {
		return 0
	}
	if !v.IsUint64() {
		d.err = fmt.Errorf("field %d: %s overflows uint64", i, v)
		return 0
	}
	return v.Uint64()
}

func (d *tupleDecoder) boolAt(i int) bool {
	v := d.field(i)
	if d.err != nil {
		return false
	}
	out, err := contract.AsBool(v)
	if err != nil {
		d.err = fmt.Errorf("field %d: %w", i, err)
	}
	return out
}

func (d *tupleDecoder) stringAt(i int) string {
	v := d.field(i)
	if d.err != nil {
		return ""
	}
	out, err := contract.AsString(v)
	if err != nil {
		d.err = fmt.Errorf("field %d: %w", i, err)
	}
	return out
}

func (d *tupleDecoder) bytes32At(i int) [32]byte {
	v := d.field(i)
	if d.err != nil {
		return [32]byte{}
	}
	out, err := contract.AsBytes32(v)
	if err != nil {
		d.err = fmt.Errorf("field %d: %w", i, err)
	}
	return out
}
