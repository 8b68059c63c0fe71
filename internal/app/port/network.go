package port

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

// ContractCaller executes read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ChainConnector is a connection handle to an EVM JSON-RPC endpoint.
// Every downstream component depends on this handle, never on the raw transport.
type ChainConnector interface {
	ContractCaller

	// IsConnected probes the endpoint. It never fails; transport errors map to false.
	IsConnected(ctx context.Context) bool

	// LatestBlock returns the latest block height.
	LatestBlock(ctx context.Context) (uint64, error)

	// RPCURL returns the endpoint the handle was created for.
	RPCURL() string
}

// BlockchainClientProvider hands out the process-wide connection handle.
type BlockchainClientProvider interface {
	GetClient(ctx context.Context) (ChainConnector, error)
	RPCURL() string
}
