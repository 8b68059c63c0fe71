package restapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"slices"
	"strings"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// RegistryHandler serves the pool and stablecoin registry endpoints and the admin address update.
type RegistryHandler struct {
	aggregator port.StablecoinAggregator
	registry   port.ContractRegistry
	adminToken string
	logger     port.Logger
}

// NewRegistryHandler creates a new RegistryHandler. An empty adminToken disables address updates.
func NewRegistryHandler(aggregator port.StablecoinAggregator, registry port.ContractRegistry, adminToken string, logger port.Logger) *RegistryHandler {
	return &RegistryHandler{
		aggregator: aggregator,
		registry:   registry,
		adminToken: adminToken,
		logger:     logger,
	}
}

// ListPools enumerates the pools registered in the LiquidityManager.
func (h *RegistryHandler) ListPools(c *gin.Context) {
	seq, err := h.aggregator.ListPools(c.Request.Context())
	if err != nil {
		h.fail(c, "pools", err)
		return
	}
	pools := slices.Collect(seq)
	if pools == nil {
		pools = []entity.PoolInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "pools": pools, "totalPools": len(pools)})
}

// ListStablecoins enumerates the stablecoins created by the StablecoinFactory.
func (h *RegistryHandler) ListStablecoins(c *gin.Context) {
	seq, err := h.aggregator.ListStablecoins(c.Request.Context())
	if err != nil {
		h.fail(c, "stablecoins", err)
		return
	}
	coins := slices.Collect(seq)
	if coins == nil {
		coins = []entity.StablecoinInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "stablecoins": coins, "totalStablecoins": len(coins)})
}

// GetTokenPrice quotes the token in the path against the peg.
func (h *RegistryHandler) GetTokenPrice(c *gin.Context) {
	quote, err := h.aggregator.PriceDeviation(c.Request.Context(), c.Param("tokenAddress"))
	if err != nil {
		h.fail(c, "price", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "price": quote})
}

// GetToken reads ERC20 metadata for the token in the path.
func (h *RegistryHandler) GetToken(c *gin.Context) {
	token, err := h.aggregator.TokenInfo(c.Request.Context(), c.Param("tokenAddress"))
	if err != nil {
		if errors.Is(err, entity.ErrCall) || errors.Is(err, entity.ErrContractNotDeployed) {
			respondStatusError(c, http.StatusNotFound, "Token could not be resolved")
			return
		}
		h.fail(c, "token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "token": token})
}

type contractsUpdateRequest struct {
	LiquidityManager  *string `json:"liquidityManager"`
	StablecoinFactory *string `json:"stablecoinFactory"`
}

// UpdateContracts overwrites the LiquidityManager and StablecoinFactory addresses. It requires
// a configured admin token presented as a bearer token.
func (h *RegistryHandler) UpdateContracts(c *gin.Context) {
	if h.adminToken == "" {
		respondStatusError(c, http.StatusForbidden, "Contract updates are disabled")
		return
	}
	if !h.authorized(c.GetHeader("Authorization")) {
		c.Header("WWW-Authenticate", `Bearer realm="contracts"`)
		respondStatusError(c, http.StatusUnauthorized, "Missing or invalid admin token")
		return
	}

	var req contractsUpdateRequest
	if err := decodeBody(c.Request.Body, &req); err != nil {
		h.logger.Debug("Rejected request body", "path", c.FullPath(), "error", err)
		respondStatusError(c, http.StatusBadRequest, msgBadBody)
		return
	}

	contracts, err := h.registry.Update(req.LiquidityManager, req.StablecoinFactory)
	if err != nil {
		h.fail(c, "contracts update", err)
		return
	}
	h.logger.Info("Contract registry updated",
		"liquidityManager", contracts.LiquidityManager,
		"stablecoinFactory", contracts.StablecoinFactory,
		"client", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "contracts": contracts})
}

func (h *RegistryHandler) authorized(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(h.adminToken)) == 1
}

func (h *RegistryHandler) fail(c *gin.Context, op string, err error) {
	code := httpStatusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("Registry request failed", "op", op, "error", err)
	} else {
		h.logger.Debug("Registry request rejected", "op", op, "error", err)
	}
	respondStatusError(c, code, clientMessage(code, err))
}
