package restapi

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const swaggerSpecRoute = "/docs/swagger.yaml"

// RouterConfig holds the HTTP-facing settings of the router.
type RouterConfig struct {
	CORSOrigins     []string
	SwaggerEnabled  bool
	SwaggerSpecFile string
}

// Handlers groups the endpoint handlers mounted by SetupRouter.
type Handlers struct {
	Automation *AutomationHandler
	Registry   *RegistryHandler
	Health     *HealthHandler
}

// SetupRouter builds the gin engine with middleware and all routes.
func SetupRouter(cfg RouterConfig, h Handlers, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(requestID(), zapLoggerMiddleware(logger), requestMetrics(), recovery(logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	router.NoRoute(func(c *gin.Context) {
		respondStatusError(c, http.StatusNotFound, msgNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		respondStatusError(c, http.StatusMethodNotAllowed, msgMethodNotAllow)
	})

	router.GET("/", h.Health.Liveness)
	router.GET("/health", h.Health.Readiness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/status", h.Automation.GetStatus)
		api.GET("/price", h.Automation.GetPrice)
		api.POST("/arbitrage", h.Automation.ExecuteArbitrage)
		api.GET("/liquidity", h.Automation.GetLiquidity)
		api.GET("/monitor", h.Automation.GetMonitor)

		api.GET("/pools", h.Registry.ListPools)
		api.GET("/stablecoins", h.Registry.ListStablecoins)
		api.GET("/price/:tokenAddress", h.Registry.GetTokenPrice)
		api.GET("/tokens/:tokenAddress", h.Registry.GetToken)
		api.POST("/contracts/update", h.Registry.UpdateContracts)
	}

	if cfg.SwaggerEnabled && cfg.SwaggerSpecFile != "" {
		router.StaticFile(swaggerSpecRoute, cfg.SwaggerSpecFile)
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(swaggerSpecRoute)))
		logger.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cfg
}
