package entity

import "time"

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"
)

// ContractAddresses is a snapshot of the contract registry.
type ContractAddresses struct {
	StableToken       string `json:"brzstable"`
	CollateralToken   string `json:"mockusdt"`
	LiquidityManager  string `json:"liquidityManager"`
	StablecoinFactory string `json:"stablecoinFactory"`
}

// DefaultPairConfigured reports whether both addresses of the stable/collateral pair are set.
func (a ContractAddresses) DefaultPairConfigured() bool {
	return a.StableToken != "" && a.CollateralToken != ""
}

// ConnectionStatus is the result of probing the RPC endpoint.
type ConnectionStatus struct {
	Connected   bool    `json:"connected"`
	RPCURL      string  `json:"rpc_url"`
	LatestBlock *uint64 `json:"latest_block"`
}

// HealthReport is the detailed readiness report served on /health.
type HealthReport struct {
	Status      string
	Timestamp   time.Time
	Connection  ConnectionStatus
	Contracts   ContractAddresses
	Network     NetworkDefinition
	CORSOrigins []string
}

// MonitorReport is the alert summary served on /api/monitor.
type MonitorReport struct {
	SystemHealth        string
	Alerts              []Alert
	LastCheck           time.Time
	Connected           bool
	ContractsConfigured bool
}
