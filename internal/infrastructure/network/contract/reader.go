package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"stablecoin_monitor/internal/app/port"
	"stablecoin_monitor/internal/domain/entity"
	"stablecoin_monitor/internal/pkg/metrics"
	"stablecoin_monitor/internal/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
)

// Reader binds ABIs to addresses. Bound views hold no chain state, so they are cached
// per caller, ABI and address.
type Reader struct {
	views *cache.Cache
}

// NewReader creates a Reader whose view cache uses the given expiration and cleanup interval.
func NewReader(defaultExpiration, cleanupInterval time.Duration) *Reader {
	return &Reader{views: cache.New(defaultExpiration, cleanupInterval)}
}

// ContractView is an ABI bound to a deployed address. A nil *ContractView stands for a
// contract that is not deployed; every call on it fails with entity.ErrContractNotDeployed
// without touching the network.
type ContractView struct {
	caller  port.ContractCaller
	address common.Address
	desc    *Descriptor
}

// Bind returns a view of desc at address, or nil when the address is empty, zero or
// malformed. Bind never performs I/O.
func (r *Reader) Bind(caller port.ContractCaller, address string, desc *Descriptor) *ContractView {
	if caller == nil || desc == nil {
		return nil
	}
	addr, ok := utils.ParseContractAddress(address)
	if !ok {
		return nil
	}

	key := fmt.Sprintf("%s:%s:%p", desc.Name, addr.Hex(), caller)
	if cached, found := r.views.Get(key); found {
		return cached.(*ContractView)
	}

	view := &ContractView{caller: caller, address: addr, desc: desc}
	r.views.SetDefault(key, view)
	return view
}

// Address returns the bound address, or the zero address for a nil view.
func (v *ContractView) Address() common.Address {
	if v == nil {
		return common.Address{}
	}
	return v.address
}

// Call packs method with args, executes an eth_call against the latest block and unpacks the
// outputs. Failures carry the contract and method in an *entity.CallError.
func (v *ContractView) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	if v == nil {
		return nil, entity.ErrContractNotDeployed
	}

	values, err := v.call(ctx, method, args)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ContractCalls.WithLabelValues(v.desc.Name, method, outcome).Inc()
	if err != nil {
		return nil, &entity.CallError{Contract: v.desc.Name + "@" + v.address.Hex(), Method: method, Err: err}
	}
	return values, nil
}

func (v *ContractView) call(ctx context.Context, method string, args []any) ([]any, error) {
	data, err := v.desc.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	to := v.address
	resp, err := v.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: empty return data", entity.ErrContractNotDeployed)
	}

	values, err := v.desc.ABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func (v *ContractView) single(ctx context.Context, method string, args []any) (any, error) {
	values, err := v.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, v.decodeErr(method, fmt.Errorf("expected 1 output, got %d", len(values)))
	}
	return values[0], nil
}

func (v *ContractView) decodeErr(method string, err error) error {
	return &entity.CallError{Contract: v.desc.Name + "@" + v.address.Hex(), Method: method, Err: err}
}

// CallBigInt calls a method returning a single integer.
func (v *ContractView) CallBigInt(ctx context.Context, method string, args ...any) (*big.Int, error) {
	value, err := v.single(ctx, method, args)
	if err != nil {
		return nil, err
	}
	out, err := AsBigInt(value)
	if err != nil {
		return nil, v.decodeErr(method, err)
	}
	return out, nil
}

// CallString calls a method returning a single string.
func (v *ContractView) CallString(ctx context.Context, method string, args ...any) (string, error) {
	value, err := v.single(ctx, method, args)
	if err != nil {
		return "", err
	}
	out, err := AsString(value)
	if err != nil {
		return "", v.decodeErr(method, err)
	}
	return out, nil
}

// CallUint8 calls a method returning a single uint8.
func (v *ContractView) CallUint8(ctx context.Context, method string, args ...any) (uint8, error) {
	value, err := v.single(ctx, method, args)
	if err != nil {
		return 0, err
	}
	out, err := AsUint8(value)
	if err != nil {
		return 0, v.decodeErr(method, err)
	}
	return out, nil
}

// CallBytes32List calls a method returning bytes32[].
func (v *ContractView) CallBytes32List(ctx context.Context, method string, args ...any) ([][32]byte, error) {
	value, err := v.single(ctx, method, args)
	if err != nil {
		return nil, err
	}
	out, ok := value.([][32]byte)
	if !ok {
		return nil, v.decodeErr(method, fmt.Errorf("unsupported bytes32[] type %T", value))
	}
	return out, nil
}

// CallTuple calls a method returning a single tuple. Fields are read with TupleField.
func (v *ContractView) CallTuple(ctx context.Context, method string, args ...any) (any, error) {
	value, err := v.single(ctx, method, args)
	if err != nil {
		return nil, err
	}
	if TupleLen(value) == 0 {
		return nil, v.decodeErr(method, fmt.Errorf("unsupported tuple type %T", value))
	}
	return value, nil
}
