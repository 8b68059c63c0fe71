package client

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/pkg/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	block    uint64
	blockErr error
	out      []byte
	callErr  error
	delay    time.Duration
	panics   bool
	closed   atomic.Bool
}

func (s *stubBackend) BlockNumber(ctx context.Context) (uint64, error) {
	if s.panics {
		panic("transport exploded")
	}
	return s.block, s.blockErr
}

func (s *stubBackend) CallContract(ctx context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.out, s.callErr
}

func (s *stubBackend) Close() { s.closed.Store(true) }

func TestEVMClient_LatestBlockAndConnectivity(t *testing.T) {
	ctx := context.Background()

	ok := newEVMClient(&stubBackend{block: 42}, "http://node", Options{})
	block, err := ok.LatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), block)
	assert.True(t, ok.IsConnected(ctx))

	down := newEVMClient(&stubBackend{blockErr: errors.New("dial tcp: refused")}, "http://node", Options{})
	_, err = down.LatestBlock(ctx)
	assert.ErrorIs(t, err, entity.ErrRPC)
	assert.False(t, down.IsConnected(ctx))

	broken := newEVMClient(&stubBackend{panics: true}, "http://node", Options{})
	assert.False(t, broken.IsConnected(ctx))
}

func TestEVMClient_CallContractTimeout(t *testing.T) {
	c := newEVMClient(&stubBackend{delay: time.Second}, "http://node", Options{RPCCallTimeout: 20 * time.Millisecond})

	_, err := c.CallContract(context.Background(), ethereum.CallMsg{}, nil)
	require.ErrorIs(t, err, entity.ErrRPC)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEVMClient_CallContractReturnsOutput(t *testing.T) {
	c := newEVMClient(&stubBackend{out: []byte{0x01}}, "http://node", Options{RateLimit: 100, BurstLimit: 5})

	out, err := c.CallContract(context.Background(), ethereum.CallMsg{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, out)
	assert.Equal(t, "http://node", c.RPCURL())
}

func TestEVMClient_RateLimiterHonoursContext(t *testing.T) {
	c := newEVMClient(&stubBackend{}, "http://node", Options{RateLimit: 0.001, BurstLimit: 1})
	ctx := context.Background()

	_, err := c.CallContract(ctx, ethereum.CallMsg{}, nil)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.CallContract(cancelled, ethereum.CallMsg{}, nil)
	assert.ErrorIs(t, err, entity.ErrRPC)
}

func TestConnect_EmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "", Options{})
	assert.ErrorIs(t, err, entity.ErrConnection)
}

func TestEVMClientProvider_CachesHandle(t *testing.T) {
	var dials atomic.Int32
	backend := &stubBackend{block: 7}
	p := NewEVMClientProvider("http://node", Options{}, logger.NewNop())
	p.dial = func(ctx context.Context, rpcURL string, opts Options) (port.ChainConnector, error) {
		dials.Add(1)
		return newEVMClient(backend, rpcURL, opts), nil
	}

	first, err := p.GetClient(context.Background())
	require.NoError(t, err)
	second, err := p.GetClient(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), dials.Load())

	p.Close()
	assert.True(t, backend.closed.Load())
}

func TestEVMClientProvider_DoesNotCacheFailure(t *testing.T) {
	var dials atomic.Int32
	p := NewEVMClientProvider("http://node", Options{}, logger.NewNop())
	p.dial = func(ctx context.Context, rpcURL string, opts Options) (port.ChainConnector, error) {
		if dials.Add(1) == 1 {
			return nil, entity.ErrConnection
		}
		return newEVMClient(&stubBackend{}, rpcURL, opts), nil
	}

	_, err := p.GetClient(context.Background())
	require.ErrorIs(t, err, entity.ErrConnection)

	c, err := p.GetClient(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, int32(2), dials.Load())
}
