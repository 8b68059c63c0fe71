package main

import (
	"context"
	"fmt"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/app/provider"
	"stablecoin_monitor/internal/app/service"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/infrastructure/configloader"
	"stablecoin_monitor/internal/infrastructure/httpclient"
	"stablecoin_monitor/internal/infrastructure/network/client"
	"stablecoin_monitor/internal/infrastructure/network/contract"
	"stablecoin_monitor/internal/infrastructure/oracle"
	"stablecoin_monitor/internal/infrastructure/restapi"
	"stablecoin_monitor/internal/infrastructure/simulation"
	"stablecoin_monitor/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// application holds the wired services shared by serve and check.
type application struct {
	cfg       *configloader.Config
	zapLogger *zap.Logger
	logger    port.Logger

	clients    *client.EVMClientProvider
	registry   port.ContractRegistry
	aggregator *service.AggregatorServiceImpl
	monitor    *service.MonitorServiceImpl
	health     *service.HealthServiceImpl
	engine     port.ExecutionEngine
	liquidity  port.LiquiditySource

	warmPrices func(ctx context.Context)
}

func newApplication(cfg *configloader.Config, zapLogger *zap.Logger) (*application, error) {
	if err := contract.LoadDescriptors(); err != nil {
		return nil, fmt.Errorf("load ABI descriptors: %w", err)
	}

	appLogger := logger.NewZapAdapter(zapLogger)
	app := &application{
		cfg:        cfg,
		zapLogger:  zapLogger,
		logger:     appLogger,
		warmPrices: func(context.Context) {},
	}

	app.clients = client.NewEVMClientProvider(cfg.Network.RPCURL, client.Options{
		ConnectionTimeout: cfg.ConnectionTimeout(),
		RPCCallTimeout:    cfg.RPCCallTimeout(),
		RateLimit:         cfg.RpcClient.RateLimit,
		BurstLimit:        cfg.RpcClient.BurstLimit,
	}, appLogger)

	app.registry = provider.NewContractRegistry(entity.ContractAddresses{
		StableToken:       cfg.Contracts.StableToken,
		CollateralToken:   cfg.Contracts.CollateralToken,
		LiquidityManager:  cfg.Contracts.LiquidityManager,
		StablecoinFactory: cfg.Contracts.StablecoinFactory,
	}, appLogger)

	reader := contract.NewReader(
		time.Duration(cfg.Cache.DefaultExpirationMinutes)*time.Minute,
		time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
	)
	rng := simulation.NewRandom(time.Now().UnixNano())

	var priceOracle port.PriceOracle
	app.liquidity = simulation.NewLiquidity()
	switch cfg.Price.Source {
	case configloader.PriceSourceDEXScreener:
		dexClient := httpclient.NewDEXScreenerClient(
			cfg.DEXScreener.BaseURL,
			time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
			zapLogger,
			cfg.DEXScreener.MaxTokensPerBatchRequest,
		)
		dexOracle := oracle.NewDEXScreenerOracle(dexClient, cfg.DEXScreener.ChainID, app.registry,
			cfg.PriceCacheTTL(), cfg.DEXScreener.MaxTokensPerBatchRequest, appLogger)
		priceOracle = dexOracle
		app.liquidity = oracle.NewDEXScreenerLiquidity(dexClient, cfg.DEXScreener.ChainID, app.registry)
		app.warmPrices = func(ctx context.Context) {
			pair := app.registry.Snapshot()
			var tokens []common.Address
			for _, addr := range []string{pair.StableToken, pair.CollateralToken} {
				if addr != "" {
					tokens = append(tokens, common.HexToAddress(addr))
				}
			}
			if err := dexOracle.Preload(ctx, tokens); err != nil {
				zapLogger.Warn("Initial price load incomplete", zap.Error(err))
				return
			}
			zapLogger.Info("Initial price load completed", zap.Int("tokens", len(tokens)))
		}
	case configloader.PriceSourceOnChain:
		priceOracle = oracle.NewOnChainOracle(app.clients, reader, app.registry)
	default:
		priceOracle = simulation.NewOracle(rng)
	}
	zapLogger.Info("Price source selected", zap.String("source", cfg.Price.Source))

	app.aggregator = service.NewAggregatorService(app.clients, reader, app.registry, priceOracle, service.PairDecimals{
		Stable:     cfg.Tokens.StableDecimals,
		Collateral: cfg.Tokens.CollateralDecimals,
	}, appLogger)
	app.monitor = service.NewMonitorService(app.clients, app.registry, simulation.NewReserveMonitor(rng), appLogger)
	app.health = service.NewHealthService(app.clients, app.registry, cfg.Definition, cfg.CORS.Origins, appLogger)
	app.engine = simulation.NewExecutionEngine()
	return app, nil
}

func (a *application) handlers() restapi.Handlers {
	return restapi.Handlers{
		Automation: restapi.NewAutomationHandler(a.aggregator, a.engine, a.liquidity, a.monitor, a.logger),
		Registry:   restapi.NewRegistryHandler(a.aggregator, a.registry, a.cfg.Admin.Token, a.logger),
		Health:     restapi.NewHealthHandler(a.health, a.cfg.Environment, a.logger),
	}
}

func (a *application) close() {
	a.clients.Close()
}
