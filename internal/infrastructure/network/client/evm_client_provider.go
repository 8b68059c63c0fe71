package client

import (
	"context"
	"sync"

	"stablecoin_monitor/internal/app/port"
)

type dialFunc func(ctx context.Context, rpcURL string, opts Options) (port.ChainConnector, error)

func dialEVM(ctx context.Context, rpcURL string, opts Options) (port.ChainConnector, error) {
	return Connect(ctx, rpcURL, opts)
}

// EVMClientProvider implements port.BlockchainClientProvider. It connects on first use and
// caches the handle, so the process starts even when the endpoint is down.
type EVMClientProvider struct {
	rpcURL string
	opts   Options
	logger port.Logger
	dial   dialFunc

	mu     sync.Mutex
	client port.ChainConnector
}

// NewEVMClientProvider creates a provider for a single RPC endpoint.
func NewEVMClientProvider(rpcURL string, opts Options, logger port.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		rpcURL: rpcURL,
		opts:   opts,
		logger: logger,
		dial:   dialEVM,
	}
}

// GetClient returns the cached handle, dialing it when absent. A failed dial is not cached.
func (p *EVMClientProvider) GetClient(ctx context.Context) (port.ChainConnector, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	p.logger.Info("Creating new EVM client", "rpc", p.rpcURL)
	c, err := p.dial(ctx, p.rpcURL, p.opts)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "rpc", p.rpcURL, "error", err)
		return nil, err
	}

	p.client = c
	return c, nil
}

// RPCURL returns the configured endpoint.
func (p *EVMClientProvider) RPCURL() string {
	return p.rpcURL
}

// Close releases the cached handle, if any.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if closer, ok := p.client.(interface{ Close() }); ok {
		closer.Close()
	}
	p.client = nil
}
