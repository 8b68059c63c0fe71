package configloader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stablecoin_monitor/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stableAddr     = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	collateralAddr = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BSC_RPC_URL", "NETWORK", "BRZSTABLE_ADDRESS", "MOCKUSDT_ADDRESS", "LIQUIDITY_MANAGER_ADDRESS",
		"STABLECOIN_FACTORY_ADDRESS", "PORT", "HOST", "APP_ENV", "LOG_LEVEL", "ADMIN_TOKEN",
		"PRICE_SOURCE", "CORS_ORIGINS", "DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, "https://data-seed-prebsc-1-s1.bnbchain.org:8545", cfg.Network.RPCURL)
	assert.Equal(t, uint64(97), cfg.Definition.ChainID)
	assert.Equal(t, uint8(18), cfg.Tokens.StableDecimals)
	assert.Equal(t, uint8(6), cfg.Tokens.CollateralDecimals)
	assert.Equal(t, PriceSourceSimulated, cfg.Price.Source)
	assert.Equal(t, int64(10000), cfg.RpcClient.DefaultTimeoutMs)
	assert.Empty(t, cfg.CORS.Origins)
	assert.Empty(t, cfg.DEXScreener.ChainID)
	assert.Equal(t, 30, cfg.DEXScreener.MaxTokensPerBatchRequest)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `
environment: production
server:
  port: "8080"
network:
  rpcURL: https://file.example
contracts:
  stableToken: ` + stableAddr + `
cors:
  origins: ["https://file.example"]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("BSC_RPC_URL", "https://env.example")
	t.Setenv("MOCKUSDT_ADDRESS", collateralAddr)
	t.Setenv("CORS_ORIGINS", " https://a.example, ,b.example,https://b.example ")
	t.Setenv("DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://env.example", cfg.Network.RPCURL)
	assert.Equal(t, "https://env.example", cfg.Definition.PrimaryRPCURL)
	assert.Equal(t, stableAddr, cfg.Contracts.StableToken)
	assert.Equal(t, collateralAddr, cfg.Contracts.CollateralToken)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.Origins)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_UnknownNetwork(t *testing.T) {
	clearEnv(t)
	t.Setenv("NETWORK", "solana")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.ErrorIs(t, err, entity.ErrConfiguration)
	assert.Contains(t, err.Error(), "BRZSTABLE_ADDRESS")
	assert.Contains(t, err.Error(), "MOCKUSDT_ADDRESS")

	cfg.Contracts.StableToken = stableAddr
	cfg.Contracts.CollateralToken = collateralAddr
	cfg.Contracts.LiquidityManager = "0x123"
	err = cfg.Validate()
	require.ErrorIs(t, err, entity.ErrConfiguration)
	assert.Contains(t, err.Error(), "LIQUIDITY_MANAGER_ADDRESS")

	cfg.Contracts.StableToken = strings.ToLower(stableAddr)
	cfg.Contracts.LiquidityManager = ""
	err = cfg.Validate()
	require.ErrorIs(t, err, entity.ErrConfiguration)
	assert.Contains(t, err.Error(), "BRZSTABLE_ADDRESS is not a valid contract address")

	cfg.Contracts.StableToken = stableAddr
	cfg.Price.Source = "oracle-of-delphi"
	assert.ErrorIs(t, cfg.Validate(), entity.ErrConfiguration)

	cfg.Price.Source = PriceSourceOnChain
	assert.ErrorIs(t, cfg.Validate(), entity.ErrConfiguration, "onchain needs a liquidity manager")
	cfg.Contracts.LiquidityManager = stableAddr
	assert.NoError(t, cfg.Validate())

	cfg.Price.Source = PriceSourceDEXScreener
	assert.ErrorIs(t, cfg.Validate(), entity.ErrConfiguration, "bsc-testnet is not indexed by DEX Screener")
	cfg.DEXScreener.ChainID = "bsc"
	assert.NoError(t, cfg.Validate())
}
