package service

import (
	"context"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
)

const (
	alertConnectionLost = "Connection to BSC lost"
	alertContractsUnset = "Contract addresses not configured"
	alertReservesLow    = "USDT reserves are low"
)

// MonitorServiceImpl implements port.MonitorService.
type MonitorServiceImpl struct {
	clientProvider port.BlockchainClientProvider
	registry       port.ContractRegistry
	reserves       port.ReserveMonitor
	logger         port.Logger
	now            func() time.Time
}

// NewMonitorService creates a new instance of MonitorServiceImpl.
func NewMonitorService(cp port.BlockchainClientProvider, registry port.ContractRegistry, reserves port.ReserveMonitor, l port.Logger) *MonitorServiceImpl {
	return &MonitorServiceImpl{
		clientProvider: cp,
		registry:       registry,
		reserves:       reserves,
		logger:         l,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ port.MonitorService = (*MonitorServiceImpl)(nil)

// Check collects alerts for connectivity, configuration and reserves.
func (s *MonitorServiceImpl) Check(ctx context.Context) (entity.MonitorReport, error) {
	if err := ctx.Err(); err != nil {
		return entity.MonitorReport{}, err
	}
	now := s.now()
	alerts := make([]entity.Alert, 0, 3)

	connected := probe(ctx, s.clientProvider, s.logger)
	if !connected {
		alerts = append(alerts, entity.Alert{
			Type: entity.AlertTypeError, Message: alertConnectionLost, Severity: entity.SeverityHigh, Timestamp: now,
		})
	}

	configured := s.registry.Snapshot().DefaultPairConfigured()
	if !configured {
		alerts = append(alerts, entity.Alert{
			Type: entity.AlertTypeWarning, Message: alertContractsUnset, Severity: entity.SeverityHigh, Timestamp: now,
		})
	}

	low, err := s.reserves.ReservesLow(ctx)
	if err != nil {
		s.logger.Warn("Reserve check failed", "error", err)
	} else if low {
		alerts = append(alerts, entity.Alert{
			Type: entity.AlertTypeWarning, Message: alertReservesLow, Severity: entity.SeverityMedium, Timestamp: now,
		})
	}

	return entity.MonitorReport{
		SystemHealth:        entity.SystemHealthFromAlerts(alerts),
		Alerts:              alerts,
		LastCheck:           now,
		Connected:           connected,
		ContractsConfigured: configured,
	}, nil
}

// probe reports connectivity; a handle that cannot be obtained counts as disconnected.
func probe(ctx context.Context, cp port.BlockchainClientProvider, l port.Logger) bool {
	client, err := cp.GetClient(ctx)
	if err != nil {
		l.Warn("RPC client unavailable", "rpc", cp.RPCURL(), "error", err)
		return false
	}
	return client.IsConnected(ctx)
}
