package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"
)

// Options tunes a connection handle.
type Options struct {
	ConnectionTimeout time.Duration
	RPCCallTimeout    time.Duration
	RateLimit         float64 // requests per second, <= 0 disables limiting
	BurstLimit        int
}

// rpcBackend is the subset of *ethclient.Client the handle uses.
type rpcBackend interface {
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// EVMClient implements port.ChainConnector for EVM-compatible chains.
type EVMClient struct {
	backend        rpcBackend
	rpcURL         string
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
}

// Connect dials the JSON-RPC endpoint. The dial is bounded by opts.ConnectionTimeout.
func Connect(ctx context.Context, rpcURL string, opts Options) (*EVMClient, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("%w: empty RPC URL", entity.ErrConnection)
	}

	dialCtx := ctx
	if opts.ConnectionTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, opts.ConnectionTimeout)
		defer cancel()
	}

	ethClient, err := ethclient.DialContext(dialCtx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to RPC %s: %w", entity.ErrConnection, rpcURL, err)
	}
	return newEVMClient(ethClient, rpcURL, opts), nil
}

func newEVMClient(backend rpcBackend, rpcURL string, opts Options) *EVMClient {
	c := &EVMClient{
		backend:        backend,
		rpcURL:         rpcURL,
		rpcCallTimeout: opts.RPCCallTimeout,
	}
	if opts.RateLimit > 0 {
		burst := opts.BurstLimit
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// IsConnected probes eth_blockNumber. Any failure, including a panic inside the transport,
// reports false.
func (c *EVMClient) IsConnected(ctx context.Context) (connected bool) {
	defer func() {
		if recover() != nil {
			connected = false
		}
	}()
	_, err := c.LatestBlock(ctx)
	return err == nil
}

// LatestBlock returns the latest block height.
func (c *EVMClient) LatestBlock(ctx context.Context) (uint64, error) {
	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	started := time.Now()
	block, err := c.backend.BlockNumber(ctx)
	metrics.ObserveRPC("eth_blockNumber", started, err)
	if err != nil {
		return 0, fmt.Errorf("%w: eth_blockNumber on %s: %w", entity.ErrRPC, c.rpcURL, err)
	}
	return block, nil
}

// CallContract executes a read-only eth_call.
func (c *EVMClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	started := time.Now()
	out, err := c.backend.CallContract(ctx, msg, blockNumber)
	metrics.ObserveRPC("eth_call", started, err)
	if err != nil {
		return nil, fmt.Errorf("%w: eth_call: %w", entity.ErrRPC, err)
	}
	return out, nil
}

// RPCURL returns the endpoint the handle was created for.
func (c *EVMClient) RPCURL() string {
	return c.rpcURL
}

// Close releases the underlying transport.
func (c *EVMClient) Close() {
	c.backend.Close()
}

// begin waits for the rate limiter and applies the per-call timeout.
func (c *EVMClient) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("%w: rate limiter: %w", entity.ErrRPC, err)
		}
	}
	if c.rpcCallTimeout <= 0 {
		return ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	return ctx, cancel, nil
}
