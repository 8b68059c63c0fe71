package contract

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TupleField returns field i of a decoded tuple. go-ethereum decodes tuples into anonymous
// structs whose field order follows the ABI components, so position is the stable key.
func TupleField(tuple any, i int) (any, error) {
	v := reflect.ValueOf(tuple)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("tuple is nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported tuple type %T", tuple)
	}
	if i < 0 || i >= v.NumField() {
		return nil, fmt.Errorf("tuple field %d out of range (%d fields)", i, v.NumField())
	}
	return v.Field(i).Interface(), nil
}

// TupleLen reports the number of fields in a decoded tuple.
func TupleLen(tuple any) int {
	v := reflect.ValueOf(tuple)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0
	}
	return v.NumField()
}

func AsAddress(value any) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func AsBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil big.Int")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported integer type %T", value)
	}
}

func AsUint8(value any) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		if v == nil || !v.IsUint64() || v.Uint64() > 255 {
			return 0, fmt.Errorf("value does not fit uint8")
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func AsBool(value any) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("unsupported bool type %T", value)
	}
	return v, nil
}

func AsString(value any) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unsupported string type %T", value)
	}
	return v, nil
}

func AsBytes32(value any) ([32]byte, error) {
	switch v := value.(type) {
	case [32]byte:
		return v, nil
	case common.Hash:
		return v, nil
	default:
		return [32]byte{}, fmt.Errorf("unsupported bytes32 type %T", value)
	}
}

// Bytes32Hex renders an identifier as 0x-prefixed hex.
func Bytes32Hex(b [32]byte) string {
	return hexutil.Encode(b[:])
}
