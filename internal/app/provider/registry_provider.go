package provider

import (
	"fmt"
	"strings"
	"sync"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/pkg/utils"
)

// contractRegistry implements port.ContractRegistry. Concurrent updates are last-write-wins.
type contractRegistry struct {
	mu        sync.RWMutex
	addresses entity.ContractAddresses
	logger    port.Logger
}

// NewContractRegistry seeds the registry with configured addresses. Malformed entries are
// dropped and logged so that the corresponding contracts read as not deployed.
func NewContractRegistry(initial entity.ContractAddresses, logger port.Logger) port.ContractRegistry {
	normalize := func(name, value string) string {
		if value == "" {
			return ""
		}
		checksummed := utils.ChecksumOrEmpty(value)
		if checksummed == "" {
			logger.Warn("Ignoring invalid contract address", "contract", name, "address", value)
		}
		return checksummed
	}

	return &contractRegistry{
		addresses: entity.ContractAddresses{
			StableToken:       normalize("stableToken", initial.StableToken),
			CollateralToken:   normalize("collateralToken", initial.CollateralToken),
			LiquidityManager:  normalize("liquidityManager", initial.LiquidityManager),
			StablecoinFactory: normalize("stablecoinFactory", initial.StablecoinFactory),
		},
		logger: logger,
	}
}

// Snapshot returns a copy of the current addresses.
func (r *contractRegistry) Snapshot() entity.ContractAddresses {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.addresses
}

// Update overwrites the liquidity manager and/or stablecoin factory. Nil leaves a field as is.
func (r *contractRegistry) Update(liquidityManager, stablecoinFactory *string) (entity.ContractAddresses, error) {
	if liquidityManager == nil && stablecoinFactory == nil {
		return entity.ContractAddresses{}, fmt.Errorf("%w: no contract address provided", entity.ErrValidation)
	}

	parse := func(name string, value *string) (string, error) {
		if value == nil {
			return "", nil
		}
		checksummed := utils.ChecksumOrEmpty(strings.TrimSpace(*value))
		if checksummed == "" {
			return "", fmt.Errorf("%w: %s is not a valid contract address", entity.ErrValidation, name)
		}
		return checksummed, nil
	}

	lm, err := parse("liquidityManager", liquidityManager)
	if err != nil {
		return entity.ContractAddresses{}, err
	}
	sf, err := parse("stablecoinFactory", stablecoinFactory)
	if err != nil {
		return entity.ContractAddresses{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if liquidityManager != nil {
		r.addresses.LiquidityManager = lm
	}
	if stablecoinFactory != nil {
		r.addresses.StablecoinFactory = sf
	}
	r.logger.Info("Contract registry updated",
		"liquidityManager", r.addresses.LiquidityManager,
		"stablecoinFactory", r.addresses.StablecoinFactory)
	return r.addresses, nil
}
