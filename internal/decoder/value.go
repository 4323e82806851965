package decoder

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"contractScope/internal/model"
)

// ToValue converts a value unpacked by go-ethereum into the model tree,
// guided by its ABI type.
func ToValue(t abi.Type, v interface{}) model.Value {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		return model.IntValue(intString(v))
	case abi.BoolTy:
		b, _ := v.(bool)
		return model.BoolValue(b)
	case abi.StringTy:
		s, _ := v.(string)
		return model.StringValue(s)
	case abi.AddressTy:
		if addr, ok := v.(common.Address); ok {
			return model.AddressValue(addr.Hex())
		}
	case abi.BytesTy:
		if b, ok := v.([]byte); ok {
			return model.BytesValue(hexutil.Encode(b))
		}
	case abi.HashTy:
		if h, ok := v.(common.Hash); ok {
			return model.BytesValue(h.Hex())
		}
	case abi.FixedBytesTy, abi.FunctionTy:
		return model.BytesValue(hexutil.Encode(arrayBytes(reflect.ValueOf(v))))
	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			break
		}
		items := make([]model.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, ToValue(*t.Elem, rv.Index(i).Interface()))
		}
		return model.ArrayValue(items...)
	case abi.TupleTy:
		rv := reflect.Indirect(reflect.ValueOf(v))
		if rv.Kind() != reflect.Struct || rv.NumField() != len(t.TupleElems) {
			break
		}
		fields := make([]model.Field, 0, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			name := ""
			if i < len(t.TupleRawNames) {
				name = t.TupleRawNames[i]
			}
			fields = append(fields, model.Field{Name: name, Value: ToValue(*elem, rv.Field(i).Interface())})
		}
		return model.TupleValue(fields...)
	}
	return model.StringValue(fmt.Sprint(v))
}

func intString(v interface{}) string {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return "0"
		}
		return n.String()
	case big.Int:
		return n.String()
	default:
		return fmt.Sprint(v)
	}
}

func arrayBytes(rv reflect.Value) []byte {
	if rv.Kind() != reflect.Array && rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]byte, rv.Len())
	for i := range out {
		out[i] = byte(rv.Index(i).Uint())
	}
	return out
}
