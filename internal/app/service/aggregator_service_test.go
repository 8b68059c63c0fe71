package service

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"stablecoin_monitor/internal/app/provider"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/infrastructure/network/contract"
	"stablecoin_monitor/internal/infrastructure/network/contract/contracttest"
	"stablecoin_monitor/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	stableToken     = contracttest.Address(1)
	collateralToken = contracttest.Address(2)
	managerAddr     = contracttest.Address(3)
	factoryAddr     = contracttest.Address(4)
	unchecksummed   = "0x5fbdb2315678afecb367f032d93f642f64180aa3"
	fixedNow        = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
)

type fixedOracle struct {
	price  float64
	source string
	err    error
	asked  []common.Address
}

func (o *fixedOracle) ObservedPrice(_ context.Context, token common.Address) (float64, string, error) {
	o.asked = append(o.asked, token)
	return o.price, o.source, o.err
}

type fixture struct {
	chain    *contracttest.FakeChain
	provider *contracttest.Provider
	oracle   *fixedOracle
	svc      *AggregatorServiceImpl
}

func newFixture(t *testing.T, addrs entity.ContractAddresses) *fixture {
	t.Helper()
	chain := contracttest.New()
	f := &fixture{
		chain:    chain,
		provider: &contracttest.Provider{Chain: chain},
		oracle:   &fixedOracle{price: 1.0, source: "test"},
	}
	f.svc = NewAggregatorService(
		f.provider,
		contract.NewReader(time.Minute, time.Minute),
		provider.NewContractRegistry(addrs, logger.NewNop()),
		f.oracle,
		PairDecimals{Stable: 18, Collateral: 6},
		logger.NewNop(),
	)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func defaultAddrs() entity.ContractAddresses {
	return entity.ContractAddresses{
		StableToken:       stableToken.Hex(),
		CollateralToken:   collateralToken.Hex(),
		LiquidityManager:  managerAddr.Hex(),
		StablecoinFactory: factoryAddr.Hex(),
	}
}

func registerToken(chain *contracttest.FakeChain, addr common.Address, name, symbol string, decimals uint8, supply *big.Int) {
	erc20 := contract.ERC20()
	chain.Returns(addr, erc20, "name", name)
	chain.Returns(addr, erc20, "symbol", symbol)
	chain.Returns(addr, erc20, "decimals", decimals)
	chain.Returns(addr, erc20, "totalSupply", supply)
}

func tokens(n int64, decimals int) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

func TestTokenInfo_AllReadsSucceed(t *testing.T) {
	f := newFixture(t, defaultAddrs())
	registerToken(f.chain, collateralToken, "Mock USDT", "USDT", 6, tokens(1_500_000, 6))

	info, err := f.svc.TokenInfo(context.Background(), collateralToken.Hex())
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, collateralToken.Hex(), info.Address)
	assert.Equal(t, "Mock USDT", info.Name)
	assert.Equal(t, "USDT", info.Symbol)
	assert.Equal(t, uint8(6), info.Decimals)
	assert.Equal(t, "1500000000000", info.TotalSupplyRaw)
	assert.Equal(t, "1500000", info.FormattedSupply)
}

func TestTokenInfo_AllOrNothing(t *testing.T) {
	for _, method := range []string{"name", "symbol", "decimals", "totalSupply"} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t, defaultAddrs())
			registerToken(f.chain, collateralToken, "Mock USDT", "USDT", 6, tokens(1, 6))
			f.chain.Reverts(collateralToken, contract.ERC20(), method)

			info, err := f.svc.TokenInfo(context.Background(), collateralToken.Hex())
			assert.Nil(t, info)
			require.ErrorIs(t, err, entity.ErrCall)
			var callErr *entity.CallError
			require.ErrorAs(t, err, &callErr)
			assert.Equal(t, method, callErr.Method)
		})
	}
}

func TestTokenInfo_InvalidAddress(t *testing.T) {
	f := newFixture(t, defaultAddrs())

	for _, addr := range []string{"0xdeadbeef", unchecksummed} {
		info, err := f.svc.TokenInfo(context.Background(), addr)
		assert.Nil(t, info, addr)
		assert.ErrorIs(t, err, entity.ErrValidation, addr)
	}
	assert.Zero(t, f.chain.Calls())
}

func TestCollateralSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		supply     *big.Int
		reserves   *big.Int
		wantRatio  string
		wantStable bool
	}{
		{"fully backed", tokens(1_000_000, 18), tokens(1_000_000, 6), "100", true},
		{"over backed", tokens(1_000, 18), tokens(1_500, 6), "150", true},
		{"just under", tokens(10_000, 18), tokens(9_999, 6), "99.99", false},
		{"zero supply", big.NewInt(0), tokens(10, 6), "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, defaultAddrs())
			st := contract.StableToken()
			f.chain.Returns(stableToken, st, "totalSupply", tt.supply)
			f.chain.Returns(stableToken, st, "getUSDTBalance", tt.reserves)

			snap, err := f.svc.CollateralSnapshot(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantRatio, snap.Ratio.String())
			assert.Equal(t, tt.wantStable, snap.IsStable)
			assert.Equal(t, fixedNow, snap.Timestamp)
		})
	}
}

func TestCollateralSnapshot_Failures(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		f := newFixture(t, entity.ContractAddresses{StableToken: stableToken.Hex()})
		_, err := f.svc.CollateralSnapshot(context.Background())
		assert.ErrorIs(t, err, entity.ErrAggregation)
		assert.Zero(t, f.chain.Calls())
	})

	t.Run("no connection", func(t *testing.T) {
		f := newFixture(t, defaultAddrs())
		f.provider.Err = entity.ErrConnection
		_, err := f.svc.CollateralSnapshot(context.Background())
		assert.ErrorIs(t, err, entity.ErrAggregation)
		assert.ErrorIs(t, err, entity.ErrConnection)
	})

	t.Run("read reverts", func(t *testing.T) {
		f := newFixture(t, defaultAddrs())
		f.chain.Returns(stableToken, contract.StableToken(), "totalSupply", tokens(1, 18))
		f.chain.Reverts(stableToken, contract.StableToken(), "getUSDTBalance")
		snap, err := f.svc.CollateralSnapshot(context.Background())
		assert.Nil(t, snap)
		assert.ErrorIs(t, err, entity.ErrAggregation)
		assert.ErrorIs(t, err, entity.ErrCall)
	})
}

func registerPools(f *fixture, failing [32]byte, ids ...[32]byte) {
	lm := contract.LiquidityManager()
	f.chain.Returns(managerAddr, lm, "getAllPoolIds", ids)
	f.chain.Handle(managerAddr, lm, "getPoolInfo", func(args []any) ([]any, error) {
		id := args[0].([32]byte)
		if id == failing {
			return nil, errors.New("execution reverted: pool not found")
		}
		return []any{contracttest.PoolInfo{
			TokenA:          stableToken,
			TokenB:          collateralToken,
			PairAddress:     contracttest.Address(id[31] + 100),
			LiquidityAmount: big.NewInt(int64(id[31]) * 1000),
			IsActive:        id[31]%2 == 1,
			CreatedAt:       big.NewInt(1_700_000_000),
			NetworkId:       big.NewInt(97),
		}}, nil
	})
}

func TestListPools_SkipsFailingIDsInOrder(t *testing.T) {
	f := newFixture(t, defaultAddrs())
	registerPools(f, contracttest.ID(2), contracttest.ID(1), contracttest.ID(2), contracttest.ID(3))
	registerToken(f.chain, stableToken, "BRZ Stable", "BRZS", 18, tokens(10, 18))

	seq, err := f.svc.ListPools(context.Background())
	require.NoError(t, err)

	var pools []entity.PoolInfo
	for p := range seq {
		pools = append(pools, p)
	}

	require.Len(t, pools, 2)
	assert.Equal(t, contract.Bytes32Hex(contracttest.ID(1)), pools[0].PoolID)
	assert.Equal(t, contract.Bytes32Hex(contracttest.ID(3)), pools[1].PoolID)
	assert.Equal(t, "3000", pools[1].LiquidityAmountRaw)
	assert.Equal(t, uint64(97), pools[0].NetworkID)
	assert.Equal(t, "bsc-testnet", pools[0].Network)
	assert.Equal(t, int64(1_700_000_000), pools[0].CreatedAt)
	assert.True(t, pools[0].IsActive)
	assert.Equal(t, contracttest.Address(101).Hex(), pools[0].PairAddress)
	require.NotNil(t, pools[0].TokenAInfo)
	assert.Equal(t, "BRZS", pools[0].TokenAInfo.Symbol)
	assert.Nil(t, pools[0].TokenBInfo, "collateral has no code on the fake chain")
}

func TestListPools_SequenceIsSingleUse(t *testing.T) {
	f := newFixture(t, defaultAddrs())
	registerPools(f, [32]byte{}, contracttest.ID(1))

	seq, err := f.svc.ListPools(context.Background())
	require.NoError(t, err)

	count := 0
	for range seq {
		count++
	}
	for range seq {
		count++
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, f.chain.CallsTo("getAllPoolIds"))
	assert.Equal(t, 1, f.chain.CallsTo("getPoolInfo"))
}

func TestListPools_DetailsFetchedLazily(t *testing.T) {
	f := newFixture(t, defaultAddrs())
	registerPools(f, [32]byte{}, contracttest.ID(1), contracttest.ID(3))

	seq, err := f.svc.ListPools(context.Background())
	require.NoError(t, err)
	assert.Zero(t, f.chain.CallsTo("getPoolInfo"))

	for range seq {
		break
	}
	assert.Equal(t, 1, f.chain.CallsTo("getPoolInfo"))
}

func TestListPools_RejectsOverflowingTimestamps(t *testing.T) {
	f := newFixture(t, defaultAddrs())
	lm := contract.LiquidityManager()
	f.chain.Returns(managerAddr, lm, "getAllPoolIds", [][32]byte{contracttest.ID(1), contracttest.ID(2)})
	f.chain.Handle(managerAddr, lm, "getPoolInfo", func(args []any) ([]any, error) {
		createdAt := big.NewInt(1_700_000_000)
		if args[0].([32]byte) == contracttest.ID(1) {
			createdAt = new(big.Int).Lsh(big.NewInt(1), 63)
		}
		return []any{contracttest.PoolInfo{
			TokenA:          stableToken,
			TokenB:          collateralToken,
			PairAddress:     contracttest.Address(100),
			LiquidityAmount: big.NewInt(1),
			CreatedAt:       createdAt,
			NetworkId:       big.NewInt(97),
		}}, nil
	})

	seq, err := f.svc.ListPools(context.Background())
	require.NoError(t, err)

	var ids []string
	for p := range seq {
		ids = append(ids, p.PoolID)
		assert.Equal(t, int64(1_700_000_000), p.CreatedAt)
	}
	assert.Equal(t, []string{contract.Bytes32Hex(contracttest.ID(2))}, ids)
}

func TestListings_NotDeployedWinsOverConnectionFailure(t *testing.T) {
	f := newFixture(t, entity.ContractAddresses{StableToken: stableToken.Hex()})
	f.provider.Err = entity.ErrConnection

	_, err := f.svc.ListPools(context.Background())
	assert.ErrorIs(t, err, entity.ErrContractNotDeployed)
	assert.NotErrorIs(t, err, entity.ErrConnection)

	_, err = f.svc.ListStablecoins(context.Background())
	assert.ErrorIs(t, err, entity.ErrContractNotDeployed)

	f = newFixture(t, defaultAddrs())
	f.provider.Err = entity.ErrConnection
	_, err = f.svc.ListPools(context.Background())
	assert.ErrorIs(t, err, entity.ErrConnection)
}

func TestListPools_NotDeployed(t *testing.T) {
	addrs := defaultAddrs()
	addrs.LiquidityManager = ""
	f := newFixture(t, addrs)

	seq, err := f.svc.ListPools(context.Background())
	assert.Nil(t, seq)
	assert.ErrorIs(t, err, entity.ErrContractNotDeployed)
	assert.Zero(t, f.chain.Calls())

	// configured, but nothing deployed there
	f = newFixture(t, defaultAddrs())
	_, err = f.svc.ListPools(context.Background())
	assert.ErrorIs(t, err, entity.ErrContractNotDeployed)
}

func TestListStablecoins(t *testing.T) {
	f := newFixture(t, defaultAddrs())
	sf := contract.StablecoinFactory()
	f.chain.Returns(factoryAddr, sf, "getAllStablecoinIds", [][32]byte{contracttest.ID(1), contracttest.ID(2)})
	f.chain.Handle(factoryAddr, sf, "getStablecoinInfo", func(args []any) ([]any, error) {
		id := args[0].([32]byte)
		if id == contracttest.ID(1) {
			return nil, errors.New("execution reverted")
		}
		return []any{contracttest.StablecoinInfo{
			StablecoinId:            id,
			StablecoinAddress:       stableToken,
			LiquidityManagerAddress: managerAddr,
			PoolId:                  contracttest.ID(9),
			Config: contracttest.StablecoinConfig{
				Name:            "BRZ Stable",
				Symbol:          "BRZS",
				CollateralToken: collateralToken,
				InitialSupply:   tokens(1_000, 18),
				CollateralRatio: big.NewInt(150),
				IsActive:        true,
				CreatedAt:       big.NewInt(1_700_000_123),
			},
		}}, nil
	})
	registerToken(f.chain, stableToken, "BRZ Stable", "BRZS", 18, tokens(1_000, 18))

	seq, err := f.svc.ListStablecoins(context.Background())
	require.NoError(t, err)

	var coins []entity.StablecoinInfo
	for c := range seq {
		coins = append(coins, c)
	}
	require.Len(t, coins, 1)

	coin := coins[0]
	assert.Equal(t, contract.Bytes32Hex(contracttest.ID(2)), coin.StablecoinID)
	assert.Equal(t, stableToken.Hex(), coin.StablecoinAddress)
	assert.Equal(t, managerAddr.Hex(), coin.LiquidityManagerAddress)
	assert.Equal(t, contract.Bytes32Hex(contracttest.ID(9)), coin.PoolID)
	assert.Equal(t, "BRZS", coin.Config.Symbol)
	assert.Equal(t, collateralToken.Hex(), coin.Config.CollateralToken)
	assert.Equal(t, "150", coin.Config.CollateralRatioRaw)
	assert.Equal(t, int64(1_700_000_123), coin.Config.CreatedAt)
	require.NotNil(t, coin.TokenInfo)
	assert.Equal(t, "1000", coin.TokenInfo.FormattedSupply)
}

func TestListStablecoins_NotDeployed(t *testing.T) {
	addrs := defaultAddrs()
	addrs.StablecoinFactory = ""
	f := newFixture(t, addrs)

	_, err := f.svc.ListStablecoins(context.Background())
	assert.ErrorIs(t, err, entity.ErrContractNotDeployed)
}

func TestPriceDeviation(t *testing.T) {
	f := newFixture(t, defaultAddrs())
	f.oracle.price = 1.015

	quote, err := f.svc.PriceDeviation(context.Background(), stableToken.Hex())
	require.NoError(t, err)
	assert.Equal(t, stableToken.Hex(), quote.TokenAddress)
	assert.InDelta(t, 0.015, quote.Deviation, 1e-9)
	assert.True(t, quote.NeedsArbitrage)
	assert.Equal(t, "test", quote.Source)
	assert.Equal(t, []common.Address{stableToken}, f.oracle.asked)

	_, err = f.svc.PriceDeviation(context.Background(), "0xnope")
	assert.ErrorIs(t, err, entity.ErrValidation)
	_, err = f.svc.PriceDeviation(context.Background(), unchecksummed)
	assert.ErrorIs(t, err, entity.ErrValidation)

	f.oracle.err = errors.New("oracle down")
	_, err = f.svc.PriceDeviation(context.Background(), "")
	assert.ErrorIs(t, err, entity.ErrAggregation)
}

func TestDefaultPair(t *testing.T) {
	f := newFixture(t, defaultAddrs())
	pair := f.svc.DefaultPair()
	assert.Equal(t, stableToken.Hex(), pair.StableToken)
	assert.Equal(t, collateralToken.Hex(), pair.CollateralToken)
}
