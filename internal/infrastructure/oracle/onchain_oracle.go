package oracle

import (
	"context"
	"fmt"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/infrastructure/network/contract"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// onChainPriceDecimals is the fixed-point scale of LiquidityManager.getTokenPrice.
const onChainPriceDecimals = 18

// OnChainOracle reads prices from the registry's LiquidityManager.
type OnChainOracle struct {
	clientProvider port.BlockchainClientProvider
	reader         *contract.Reader
	registry       port.ContractRegistry
}

// NewOnChainOracle creates an OnChainOracle.
func NewOnChainOracle(cp port.BlockchainClientProvider, reader *contract.Reader, registry port.ContractRegistry) *OnChainOracle {
	return &OnChainOracle{clientProvider: cp, reader: reader, registry: registry}
}

var _ port.PriceOracle = (*OnChainOracle)(nil)

// ObservedPrice implements port.PriceOracle.
func (o *OnChainOracle) ObservedPrice(ctx context.Context, token common.Address) (float64, string, error) {
	token, err := resolveToken(o.registry, token)
	if err != nil {
		return 0, SourceOnChain, err
	}

	client, err := o.clientProvider.GetClient(ctx)
	if err != nil {
		return 0, SourceOnChain, err
	}
	manager := o.reader.Bind(client, o.registry.Snapshot().LiquidityManager, contract.LiquidityManager())
	if manager == nil {
		return 0, SourceOnChain, fmt.Errorf("%w: liquidity manager", entity.ErrContractNotDeployed)
	}

	raw, err := manager.CallBigInt(ctx, "getTokenPrice", token)
	if err != nil {
		return 0, SourceOnChain, err
	}
	if raw.Sign() == 0 {
		return 0, SourceOnChain, fmt.Errorf("liquidity manager has no price for %s", token.Hex())
	}
	return decimal.NewFromBigInt(raw, -onChainPriceDecimals).InexactFloat64(), SourceOnChain, nil
}
