package restapi

import (
	"net/http"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

const msgContractsNotConfigured = "Contract addresses not configured"

// AutomationHandler serves the default-pair endpoints: status, price, arbitrage, liquidity and monitor.
type AutomationHandler struct {
	aggregator port.StablecoinAggregator
	engine     port.ExecutionEngine
	liquidity  port.LiquiditySource
	monitor    port.MonitorService
	logger     port.Logger
}

// NewAutomationHandler creates a new AutomationHandler.
func NewAutomationHandler(
	aggregator port.StablecoinAggregator,
	engine port.ExecutionEngine,
	liquidity port.LiquiditySource,
	monitor port.MonitorService,
	logger port.Logger,
) *AutomationHandler {
	return &AutomationHandler{
		aggregator: aggregator,
		engine:     engine,
		liquidity:  liquidity,
		monitor:    monitor,
		logger:     logger,
	}
}

type statusContracts struct {
	StableToken     string `json:"brzstable"`
	CollateralToken string `json:"mockusdt"`
}

type statusData struct {
	Supply          float64         `json:"brzstable_supply"`
	Reserves        float64         `json:"usdt_reserves"`
	CollateralRatio float64         `json:"collateral_ratio"`
	IsStable        bool            `json:"is_stable"`
	Timestamp       time.Time       `json:"timestamp"`
	Contracts       statusContracts `json:"contracts"`
}

// GetStatus returns the collateral snapshot of the default pair.
func (h *AutomationHandler) GetStatus(c *gin.Context) {
	pair := h.aggregator.DefaultPair()
	if !pair.DefaultPairConfigured() {
		respondFailure(c, http.StatusInternalServerError, msgContractsNotConfigured)
		return
	}

	snap, err := h.aggregator.CollateralSnapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build collateral snapshot", "error", err)
		respondFailure(c, http.StatusInternalServerError, msgInternal)
		return
	}

	respondData(c, statusData{
		Supply:          snap.Supply.InexactFloat64(),
		Reserves:        snap.Reserves.InexactFloat64(),
		CollateralRatio: snap.Ratio.InexactFloat64(),
		IsStable:        snap.IsStable,
		Timestamp:       snap.Timestamp,
		Contracts:       statusContracts{StableToken: pair.StableToken, CollateralToken: pair.CollateralToken},
	})
}

// GetPrice quotes the default stable token against its peg.
func (h *AutomationHandler) GetPrice(c *gin.Context) {
	quote, err := h.aggregator.PriceDeviation(c.Request.Context(), "")
	if err != nil {
		h.logger.Error("Failed to quote stable token", "error", err)
		respondFailure(c, http.StatusInternalServerError, msgInternal)
		return
	}
	respondData(c, quote)
}

// ExecuteArbitrage validates an arbitrage request and hands it to the execution engine.
func (h *AutomationHandler) ExecuteArbitrage(c *gin.Context) {
	var req entity.ArbitrageRequest
	if err := decodeBody(c.Request.Body, &req); err != nil {
		h.logger.Debug("Rejected request body", "path", c.FullPath(), "error", err)
		respondFailure(c, http.StatusBadRequest, msgBadBody)
		return
	}
	if err := req.Validate(); err != nil {
		respondFailure(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Execute(c.Request.Context(), req)
	if err != nil {
		code := httpStatusFor(err)
		if code >= http.StatusInternalServerError {
			h.logger.Error("Arbitrage execution failed", "action", req.Action, "amount", req.Amount, "error", err)
		}
		respondFailure(c, code, clientMessage(code, err))
		return
	}
	h.logger.Info("Arbitrage request handled", "action", req.Action, "amount", req.Amount, "status", result.Status)
	respondData(c, result)
}

// GetLiquidity reports stable token liquidity by venue.
func (h *AutomationHandler) GetLiquidity(c *gin.Context) {
	snap, err := h.liquidity.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read liquidity", "error", err)
		respondFailure(c, http.StatusInternalServerError, msgInternal)
		return
	}

	data := gin.H{
		"total_liquidity":  snap.TotalLiquidity,
		"total_volume_24h": snap.TotalVolume24h,
		"timestamp":        snap.Timestamp,
		"source":           snap.Source,
	}
	for venue, liq := range snap.Venues {
		if _, taken := data[venue]; taken {
			h.logger.Warn("Skipping liquidity venue named like a summary field", "venue", venue)
			continue
		}
		data[venue] = liq
	}
	respondData(c, data)
}

type monitorData struct {
	SystemHealth        string         `json:"system_health"`
	Alerts              []entity.Alert `json:"alerts"`
	LastCheck           time.Time      `json:"last_check"`
	Connected           bool           `json:"bsc_connected"`
	ContractsConfigured bool           `json:"contracts_configured"`
}

// GetMonitor returns the alert summary.
func (h *AutomationHandler) GetMonitor(c *gin.Context) {
	report, err := h.monitor.Check(c.Request.Context())
	if err != nil {
		h.logger.Error("Monitor check failed", "error", err)
		respondFailure(c, http.StatusInternalServerError, msgInternal)
		return
	}

	alerts := report.Alerts
	if alerts == nil {
		alerts = []entity.Alert{}
	}
	respondData(c, monitorData{
		SystemHealth:        report.SystemHealth,
		Alerts:              alerts,
		LastCheck:           report.LastCheck,
		Connected:           report.Connected,
		ContractsConfigured: report.ContractsConfigured,
	})
}
