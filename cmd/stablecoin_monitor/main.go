package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/infrastructure/configloader"
	"stablecoin_monitor/internal/infrastructure/restapi"
	"stablecoin_monitor/internal/pkg/logger"
	"stablecoin_monitor/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// errDegraded makes check exit non-zero without printing a second error line.
var errDegraded = errors.New("service degraded")

func main() {
	root := &cobra.Command{
		Use:           "stablecoin_monitor",
		Short:         "Read-only BRZStable monitor for BNB Smart Chain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addGlobalFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	})

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Print a one-shot health report as JSON; exits 1 when degraded",
		RunE:  runCheck,
	}
	checkCmd.Flags().Duration("timeout", 15*time.Second, "overall check timeout")
	root.AddCommand(checkCmd)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errDegraded) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file path (default $CONFIG_PATH or "+configloader.DefaultPath+")")
	fs.String("log-level", "", "log level override (debug, info, warn, error)")
}

// bootstrap loads configuration and builds the root logger.
func bootstrap(fs *pflag.FlagSet) (*configloader.Config, *zap.Logger, error) {
	path, _ := fs.GetString("config")
	if path == "" {
		path = configloader.Path()
	}
	cfg, err := configloader.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if level, _ := fs.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	zapLogger, err := logger.New(cfg.Logging.Level, !cfg.IsProduction())
	if err != nil {
		return nil, nil, err
	}
	logger.InstallSlog(zapLogger)

	if err := cfg.Validate(); err != nil {
		if cfg.IsProduction() {
			zapLogger.Error("Invalid configuration", zap.Error(err))
			_ = zapLogger.Sync()
			return nil, nil, err
		}
		zapLogger.Warn("Running with incomplete configuration", zap.Error(err))
	}
	return cfg, zapLogger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, zapLogger, err := bootstrap(cmd.Flags())
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	metrics.MustRegisterMetrics()
	app, err := newApplication(cfg, zapLogger)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		app.warmPrices(warmCtx)
	}()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := restapi.SetupRouter(restapi.RouterConfig{
		CORSOrigins:     cfg.CORS.Origins,
		SwaggerEnabled:  cfg.Swagger.Enabled,
		SwaggerSpecFile: cfg.Swagger.SpecFile,
	}, app.handlers(), zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	zapLogger.Info("Starting BRZStable API",
		zap.String("address", srv.Addr),
		zap.String("environment", cfg.Environment),
		zap.String("network", cfg.Definition.Identifier),
		zap.String("rpc", cfg.Network.RPCURL),
		zap.String("brzstable", cfg.Contracts.StableToken),
		zap.String("mockusdt", cfg.Contracts.CollateralToken),
		zap.Bool("debug", cfg.Debug))

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	zapLogger.Info("Server stopped")
	return nil
}

type checkReport struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Network      string                   `json:"network"`
	Connection   entity.ConnectionStatus  `json:"bsc_connection"`
	Contracts    entity.ContractAddresses `json:"contracts"`
	SystemHealth string                   `json:"system_health"`
	Alerts       []entity.Alert           `json:"alerts"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, zapLogger, err := bootstrap(cmd.Flags())
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	app, err := newApplication(cfg, zapLogger)
	if err != nil {
		return err
	}
	defer app.close()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	health, err := app.health.Check(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	monitor, err := app.monitor.Check(ctx)
	if err != nil {
		return fmt.Errorf("monitor check: %w", err)
	}

	report := checkReport{
		Status:       health.Status,
		Timestamp:    health.Timestamp,
		Network:      health.Network.Identifier,
		Connection:   health.Connection,
		Contracts:    health.Contracts,
		SystemHealth: monitor.SystemHealth,
		Alerts:       monitor.Alerts,
	}
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if health.Status != entity.HealthStatusHealthy {
		return errDegraded
	}
	return nil
}
