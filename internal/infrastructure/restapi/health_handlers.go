package restapi

import (
	"net/http"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// Version is reported by the liveness and readiness endpoints.
const Version = "1.0.0"

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	health      port.HealthService
	environment string
	logger      port.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(health port.HealthService, environment string, logger port.Logger) *HealthHandler {
	return &HealthHandler{health: health, environment: environment, logger: logger}
}

// Liveness answers as long as the process serves HTTP.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      entity.HealthStatusHealthy,
		"message":     "BRZStable API is running",
		"timestamp":   time.Now().UTC(),
		"version":     Version,
		"environment": h.environment,
	})
}

type healthContracts struct {
	StableToken     string `json:"brzstable_address"`
	CollateralToken string `json:"mockusdt_address"`
}

type healthResponse struct {
	Status      string                  `json:"status"`
	Timestamp   time.Time               `json:"timestamp"`
	Version     string                  `json:"version"`
	Environment string                  `json:"environment"`
	Network     string                  `json:"network"`
	Connection  entity.ConnectionStatus `json:"bsc_connection"`
	Contracts   healthContracts         `json:"contracts"`
	CORSOrigins []string                `json:"cors_origins"`
}

// Readiness probes the RPC endpoint. An unreachable endpoint is reported as degraded with 200.
func (h *HealthHandler) Readiness(c *gin.Context) {
	report, err := h.health.Check(c.Request.Context())
	if err != nil {
		h.logger.Error("Health check failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    entity.HealthStatusUnhealthy,
			"timestamp": time.Now().UTC(),
			"error":     msgInternal,
		})
		return
	}

	origins := report.CORSOrigins
	if origins == nil {
		origins = []string{}
	}
	c.JSON(http.StatusOK, healthResponse{
		Status:      report.Status,
		Timestamp:   report.Timestamp,
		Version:     Version,
		Environment: h.environment,
		Network:     report.Network.Identifier,
		Connection:  report.Connection,
		Contracts: healthContracts{
			StableToken:     report.Contracts.StableToken,
			CollateralToken: report.Contracts.CollateralToken,
		},
		CORSOrigins: origins,
	})
}
