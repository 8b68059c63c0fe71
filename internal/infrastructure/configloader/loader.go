package configloader

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"stablecoin_monitor/internal/domain/entity"
	networkdefinition "stablecoin_monitor/internal/infrastructure/network/definition"
	"stablecoin_monitor/internal/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	PriceSourceSimulated   = "simulated"
	PriceSourceDEXScreener = "dexscreener"
	PriceSourceOnChain     = "onchain"

	// DefaultPath is used when CONFIG_PATH is not set.
	DefaultPath = "config/config.yml"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                string `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// NetworkConfig selects the chain the service reads from.
type NetworkConfig struct {
	Identifier string `yaml:"identifier"`
	RPCURL     string `yaml:"rpcURL"`
}

// RpcClientConfig holds configuration for the JSON-RPC client.
type RpcClientConfig struct {
	DefaultTimeoutMs    int64   `yaml:"defaultTimeoutMs"`
	ConnectionTimeoutMs int64   `yaml:"connectionTimeoutMs"`
	RateLimit           float64 `yaml:"rateLimit"`
	BurstLimit          int     `yaml:"burstLimit"`
}

// ContractsConfig holds the deployed contract addresses.
type ContractsConfig struct {
	StableToken       string `yaml:"stableToken"`
	CollateralToken   string `yaml:"collateralToken"`
	LiquidityManager  string `yaml:"liquidityManager"`
	StablecoinFactory string `yaml:"stablecoinFactory"`
}

// TokensConfig holds decimal conventions of the default pair.
type TokensConfig struct {
	StableDecimals     uint8 `yaml:"stableDecimals"`
	CollateralDecimals uint8 `yaml:"collateralDecimals"`
}

// CORSConfig holds the allowed origins. Empty means any origin.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AdminConfig gates the contract registry update endpoint.
type AdminConfig struct {
	Token string `yaml:"token"`
}

// PriceConfig selects the price oracle.
type PriceConfig struct {
	Source          string `yaml:"source"`
	CacheTTLSeconds int    `yaml:"cacheTTLSeconds"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL                  string `yaml:"baseURL"`
	ChainID                  string `yaml:"chainId"`
	RequestTimeoutMillis     int64  `yaml:"requestTimeoutMillis"`
	MaxTokensPerBatchRequest int    `yaml:"maxTokensPerBatchRequest"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecFile string `yaml:"specFile"`
}

// CacheConfig holds configuration for the bound contract view cache.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// Config is the top-level configuration structure. It is immutable after Load.
type Config struct {
	Environment string            `yaml:"environment"`
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	Network     NetworkConfig     `yaml:"network"`
	RpcClient   RpcClientConfig   `yaml:"rpcClient"`
	Contracts   ContractsConfig   `yaml:"contracts"`
	Tokens      TokensConfig      `yaml:"tokens"`
	CORS        CORSConfig        `yaml:"cors"`
	Logging     LoggingConfig     `yaml:"logging"`
	Admin       AdminConfig       `yaml:"admin"`
	Price       PriceConfig       `yaml:"price"`
	DEXScreener DEXScreenerConfig `yaml:"dexScreener"`
	Swagger     SwaggerConfig     `yaml:"swagger"`
	Cache       CacheConfig       `yaml:"cache"`

	// Definition is resolved from Network.Identifier during Load.
	Definition entity.NetworkDefinition `yaml:"-"`
}

// Path returns the config file path from CONFIG_PATH, or DefaultPath.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("CONFIG_PATH")); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads .env, then the optional YAML file at path, then applies environment overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		logrus.Infof("Loading configuration from path: %s", path)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		logrus.Infof("Config file %s not found, using environment and defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	def, ok := networkdefinition.Lookup(cfg.Network.Identifier)
	if !ok {
		return nil, fmt.Errorf("%w: unknown network %q (known: %s)",
			entity.ErrConfiguration, cfg.Network.Identifier, strings.Join(networkdefinition.Identifiers(), ", "))
	}
	if cfg.Network.RPCURL == "" {
		cfg.Network.RPCURL = def.PrimaryRPCURL
		logrus.Infof("Network.RPCURL not set, defaulting to %s", cfg.Network.RPCURL)
	}
	def.PrimaryRPCURL = cfg.Network.RPCURL
	cfg.Definition = def
	if cfg.DEXScreener.ChainID == "" {
		cfg.DEXScreener.ChainID = def.DEXScreenerID
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Network.RPCURL, "BSC_RPC_URL")
	setString(&cfg.Network.Identifier, "NETWORK")
	setString(&cfg.Contracts.StableToken, "BRZSTABLE_ADDRESS")
	setString(&cfg.Contracts.CollateralToken, "MOCKUSDT_ADDRESS")
	setString(&cfg.Contracts.LiquidityManager, "LIQUIDITY_MANAGER_ADDRESS")
	setString(&cfg.Contracts.StablecoinFactory, "STABLECOIN_FACTORY_ADDRESS")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Host, "HOST")
	setString(&cfg.Environment, "APP_ENV")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Admin.Token, "ADMIN_TOKEN")
	setString(&cfg.Price.Source, "PRICE_SOURCE")

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		cfg.CORS.Origins = utils.SplitAndClean(v)
	}
	if v, ok := os.LookupEnv("DEBUG"); ok && strings.TrimSpace(v) != "" {
		debug, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			logrus.Warnf("Invalid DEBUG value %q, ignoring", v)
		} else {
			cfg.Debug = debug
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func applyDefaults(cfg *Config) {
	cfg.Environment = strings.ToLower(cfg.Environment)
	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
		logrus.Infof("Environment not set, defaulting to %s", cfg.Environment)
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "5000"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}

	if cfg.Network.Identifier == "" {
		cfg.Network.Identifier = networkdefinition.DefaultIdentifier
	}

	if cfg.RpcClient.DefaultTimeoutMs <= 0 {
		cfg.RpcClient.DefaultTimeoutMs = 10000
		logrus.Infof("RpcClient.DefaultTimeoutMs not set, defaulting to %d ms", cfg.RpcClient.DefaultTimeoutMs)
	}
	if cfg.RpcClient.ConnectionTimeoutMs <= 0 {
		cfg.RpcClient.ConnectionTimeoutMs = 10000
	}
	if cfg.RpcClient.RateLimit <= 0 {
		cfg.RpcClient.RateLimit = 20
	}
	if cfg.RpcClient.BurstLimit <= 0 {
		cfg.RpcClient.BurstLimit = 10
	}

	if cfg.Tokens.StableDecimals == 0 {
		cfg.Tokens.StableDecimals = 18
	}
	if cfg.Tokens.CollateralDecimals == 0 {
		cfg.Tokens.CollateralDecimals = 6
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
		if cfg.Debug {
			cfg.Logging.Level = "debug"
		}
	}

	cfg.Price.Source = strings.ToLower(cfg.Price.Source)
	if cfg.Price.Source == "" {
		cfg.Price.Source = PriceSourceSimulated
	}
	if cfg.Price.CacheTTLSeconds <= 0 {
		cfg.Price.CacheTTLSeconds = 60
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}
	if cfg.DEXScreener.MaxTokensPerBatchRequest <= 0 {
		cfg.DEXScreener.MaxTokensPerBatchRequest = 30
	}

	cfg.CORS.Origins = slices.DeleteFunc(cfg.CORS.Origins, func(origin string) bool {
		if origin == "*" || strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			return false
		}
		logrus.Warnf("Ignoring CORS origin %q: it must be * or start with http:// or https://", origin)
		return true
	})

	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}

	if cfg.Cache.DefaultExpirationMinutes <= 0 {
		cfg.Cache.DefaultExpirationMinutes = 30
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 60
	}
}

// Validate reports missing or malformed contract addresses and unsupported settings.
func (c *Config) Validate() error {
	var problems []string

	addresses := []struct {
		env, value string
		required   bool
	}{
		{"BRZSTABLE_ADDRESS", c.Contracts.StableToken, true},
		{"MOCKUSDT_ADDRESS", c.Contracts.CollateralToken, true},
		{"LIQUIDITY_MANAGER_ADDRESS", c.Contracts.LiquidityManager, false},
		{"STABLECOIN_FACTORY_ADDRESS", c.Contracts.StablecoinFactory, false},
	}
	var missing []string
	for _, a := range addresses {
		switch {
		case a.value == "" && a.required:
			missing = append(missing, a.env)
		case a.value != "" && utils.ChecksumOrEmpty(a.value) == "":
			problems = append(problems, a.env+" is not a valid contract address")
		}
	}
	if len(missing) > 0 {
		problems = append(problems, "missing required variables: "+strings.Join(missing, ", "))
	}

	switch c.Price.Source {
	case PriceSourceSimulated:
	case PriceSourceDEXScreener:
		if c.DEXScreener.ChainID == "" {
			problems = append(problems, fmt.Sprintf("network %s has no DEX Screener chain id, set dexScreener.chainId", c.Definition.Identifier))
		}
	case PriceSourceOnChain:
		if c.Contracts.LiquidityManager == "" {
			problems = append(problems, "onchain price source requires LIQUIDITY_MANAGER_ADDRESS")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported price source %q", c.Price.Source))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", entity.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// PriceCacheTTL is how long oracle prices are reused.
func (c *Config) PriceCacheTTL() time.Duration {
	return time.Duration(c.Price.CacheTTLSeconds) * time.Second
}

// RPCCallTimeout is the bound applied to every RPC.
func (c *Config) RPCCallTimeout() time.Duration {
	return time.Duration(c.RpcClient.DefaultTimeoutMs) * time.Millisecond
}

// ConnectionTimeout bounds the initial dial.
func (c *Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.RpcClient.ConnectionTimeoutMs) * time.Millisecond
}
