// Package contracttest provides an in-process chain for exercising contract reads without RPC.
package contracttest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/infrastructure/network/contract"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ErrReverted is returned for calls to methods with no registered handler.
var ErrReverted = errors.New("execution reverted")

// Handler answers one method call with output values in ABI order.
type Handler func(args []any) ([]any, error)

type fakeContract struct {
	desc     *contract.Descriptor
	handlers map[string]Handler
}

// FakeChain implements port.ChainConnector by decoding calldata with the real ABI and
// packing canned outputs. Addresses with nothing registered behave like accounts without code.
type FakeChain struct {
	mu        sync.Mutex
	contracts map[common.Address]*fakeContract
	calls     map[string]int
	total     int

	Block     uint64
	BlockErr  error
	URL       string
	Connected bool
}

// New returns a connected FakeChain at block 1.
func New() *FakeChain {
	return &FakeChain{
		contracts: make(map[common.Address]*fakeContract),
		calls:     make(map[string]int),
		Block:     1,
		URL:       "http://fake-chain",
		Connected: true,
	}
}

// Handle registers a handler for method on desc at address.
func (f *FakeChain) Handle(address common.Address, desc *contract.Descriptor, method string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.contracts[address]
	if !ok {
		c = &fakeContract{desc: desc, handlers: make(map[string]Handler)}
		f.contracts[address] = c
	}
	c.handlers[method] = h
}

// Returns registers fixed outputs for method.
func (f *FakeChain) Returns(address common.Address, desc *contract.Descriptor, method string, outputs ...any) {
	f.Handle(address, desc, method, func([]any) ([]any, error) { return outputs, nil })
}

// Reverts registers a method that always fails.
func (f *FakeChain) Reverts(address common.Address, desc *contract.Descriptor, method string) {
	f.Handle(address, desc, method, func([]any) ([]any, error) { return nil, ErrReverted })
}

// CallContract implements port.ContractCaller.
func (f *FakeChain) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, fmt.Errorf("fake chain: call without target")
	}
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("fake chain: calldata too short")
	}

	f.mu.Lock()
	f.total++
	c, ok := f.contracts[*msg.To]
	f.mu.Unlock()
	if !ok {
		return []byte{}, nil
	}

	method, err := c.desc.ABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("fake chain: %w", err)
	}

	f.mu.Lock()
	f.calls[method.Name]++
	h := c.handlers[method.Name]
	f.mu.Unlock()
	if h == nil {
		return nil, ErrReverted
	}

	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("fake chain: unpack %s input: %w", method.Name, err)
	}
	outputs, err := h(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(outputs...)
}

// IsConnected implements port.ChainConnector.
func (f *FakeChain) IsConnected(ctx context.Context) bool {
	_, err := f.LatestBlock(ctx)
	return err == nil
}

// LatestBlock implements port.ChainConnector.
func (f *FakeChain) LatestBlock(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.Connected {
		return 0, errors.New("fake chain: disconnected")
	}
	if f.BlockErr != nil {
		return 0, f.BlockErr
	}
	return f.Block, nil
}

// RPCURL implements port.ChainConnector.
func (f *FakeChain) RPCURL() string {
	return f.URL
}

// SetConnected toggles connectivity.
func (f *FakeChain) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Connected = connected
}

// Calls returns the number of eth_call requests received.
func (f *FakeChain) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// CallsTo returns the number of calls received for method on any contract.
func (f *FakeChain) CallsTo(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Provider hands out this chain, or err when set.
type Provider struct {
	Chain *FakeChain
	Err   error
}

var _ port.BlockchainClientProvider = (*Provider)(nil)

// GetClient implements port.BlockchainClientProvider.
func (p *Provider) GetClient(context.Context) (port.ChainConnector, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Chain, nil
}

// RPCURL implements port.BlockchainClientProvider.
func (p *Provider) RPCURL() string {
	if p.Chain == nil {
		return "http://fake-chain"
	}
	return p.Chain.URL
}

// Tuple shapes accepted by Arguments.Pack for the registry contracts.

type PoolInfo struct {
	TokenA          common.Address
	TokenB          common.Address
	PairAddress     common.Address
	LiquidityAmount *big.Int
	IsActive        bool
	CreatedAt       *big.Int
	NetworkId       *big.Int //nolint:revive // must match the ABI component name
}

type StablecoinConfig struct {
	Name            string
	Symbol          string
	CollateralToken common.Address
	InitialSupply   *big.Int
	CollateralRatio *big.Int
	IsActive        bool
	CreatedAt       *big.Int
}

type StablecoinInfo struct {
	StablecoinId            [32]byte //nolint:revive // must match the ABI component name
	StablecoinAddress       common.Address
	LiquidityManagerAddress common.Address
	PoolId                  [32]byte //nolint:revive // must match the ABI component name
	Config                  StablecoinConfig
}

// ID builds a bytes32 identifier whose last byte is n.
func ID(n byte) [32]byte {
	var id [32]byte
	id[31] = n
	return id
}

// Address builds a deterministic non-zero address whose last byte is n.
func Address(n byte) common.Address {
	var a common.Address
	a[0] = 0xAA
	a[19] = n
	return a
}
