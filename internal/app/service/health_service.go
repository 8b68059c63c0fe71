package service

import (
	"context"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
)

// HealthServiceImpl implements port.HealthService.
type HealthServiceImpl struct {
	clientProvider port.BlockchainClientProvider
	registry       port.ContractRegistry
	network        entity.NetworkDefinition
	corsOrigins    []string
	logger         port.Logger
	now            func() time.Time
}

// NewHealthService creates a new instance of HealthServiceImpl.
func NewHealthService(
	cp port.BlockchainClientProvider,
	registry port.ContractRegistry,
	network entity.NetworkDefinition,
	corsOrigins []string,
	l port.Logger,
) *HealthServiceImpl {
	return &HealthServiceImpl{
		clientProvider: cp,
		registry:       registry,
		network:        network,
		corsOrigins:    corsOrigins,
		logger:         l,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ port.HealthService = (*HealthServiceImpl)(nil)

// Check probes the RPC endpoint. An unreachable endpoint degrades the report; it is not an error.
func (s *HealthServiceImpl) Check(ctx context.Context) (entity.HealthReport, error) {
	if err := ctx.Err(); err != nil {
		return entity.HealthReport{}, err
	}

	conn := entity.ConnectionStatus{RPCURL: s.clientProvider.RPCURL()}
	if client, err := s.clientProvider.GetClient(ctx); err != nil {
		s.logger.Warn("RPC client unavailable", "rpc", conn.RPCURL, "error", err)
	} else if block, err := client.LatestBlock(ctx); err != nil {
		s.logger.Warn("Failed to read latest block", "rpc", conn.RPCURL, "error", err)
	} else {
		conn.Connected = true
		conn.LatestBlock = &block
	}

	status := entity.HealthStatusHealthy
	if !conn.Connected {
		status = entity.HealthStatusDegraded
	}

	return entity.HealthReport{
		Status:      status,
		Timestamp:   s.now(),
		Connection:  conn,
		Contracts:   s.registry.Snapshot(),
		Network:     s.network,
		CORSOrigins: s.corsOrigins,
	}, nil
}
