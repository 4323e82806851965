package abiargs

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PackableArgs turns parsed argument values into the Go types go-ethereum's
// packer expects for each declared argument.
func PackableArgs(args abi.Arguments, values []interface{}) ([]interface{}, error) {
	if len(args) != len(values) {
		return nil, fmt.Errorf("argument count mismatch: expected %d, got %d", len(args), len(values))
	}
	out := make([]interface{}, len(values))
	for i, arg := range args {
		v, err := packable(arg.Type, values[i])
		if err != nil {
			return nil, fmt.Errorf("argument %s (%s): %w", arg.Name, arg.Type.String(), err)
		}
		out[i] = v
	}
	return out, nil
}

func packable(t abi.Type, value interface{}) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		str, ok := value.(string)
		if !ok || !common.IsHexAddress(str) {
			return nil, fmt.Errorf("invalid address %v", value)
		}
		return common.HexToAddress(str), nil
	case abi.UintTy, abi.IntTy:
		n, err := toBigInt(value)
		if err != nil {
			return nil, err
		}
		return sizedInteger(t, n)
	case abi.BoolTy:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strings.EqualFold(v, "true"), nil
		}
		return nil, fmt.Errorf("invalid bool %v", value)
	case abi.StringTy:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("invalid string %v", value)
		}
		return str, nil
	case abi.BytesTy:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("invalid bytes %v", value)
		}
		return hexutil.Decode(str)
	case abi.FixedBytesTy:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("invalid %s %v", t.String(), value)
		}
		raw, err := hexutil.Decode(str)
		if err != nil {
			return nil, err
		}
		if len(raw) != t.Size {
			return nil, fmt.Errorf("invalid number of bytes %d", len(raw))
		}
		fixed := reflect.New(t.GetType()).Elem()
		reflect.Copy(fixed, reflect.ValueOf(raw))
		return fixed.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		items, err := toItems(value)
		if err != nil {
			return nil, err
		}
		var out reflect.Value
		if t.T == abi.SliceTy {
			out = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			if len(items) != t.Size {
				return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
			}
			out = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			elem, err := packable(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(elem))
		}
		return out.Interface(), nil
	case abi.TupleTy:
		return packableTuple(t, value)
	default:
		return nil, fmt.Errorf("unsupported type %s", t.String())
	}
}

func packableTuple(t abi.Type, value interface{}) (interface{}, error) {
	var fields map[string]interface{}
	switch v := value.(type) {
	case map[string]interface{}:
		fields = v
	case string:
		if err := decodeJSON(v, &fields); err != nil {
			return nil, fmt.Errorf("tuple must be a JSON object: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid tuple %v", value)
	}

	st := reflect.New(t.GetType()).Elem()
	for i, elemType := range t.TupleElems {
		name := t.TupleRawNames[i]
		raw, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("missing tuple field %s", name)
		}
		elem, err := packable(*elemType, raw)
		if err != nil {
			return nil, fmt.Errorf("tuple field %s: %w", name, err)
		}
		st.Field(i).Set(reflect.ValueOf(elem))
	}
	return st.Interface(), nil
}

func toItems(value interface{}) ([]interface{}, error) {
	switch v := value.(type) {
	case []interface{}:
		return v, nil
	case string:
		var items []interface{}
		if err := decodeJSON(v, &items); err != nil {
			return nil, fmt.Errorf("expected a JSON array: %w", err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("expected an array, got %T", value)
}

// decodeJSON keeps numbers as json.Number so large integers survive and
// fractions are rejected by parseBigInt.
func decodeJSON(input string, out interface{}) error {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

func toBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case json.Number:
		return parseBigInt(v.String())
	case string:
		return parseBigInt(v)
	}
	return nil, fmt.Errorf("invalid integer %v", value)
}

func sizedInteger(t abi.Type, n *big.Int) (interface{}, error) {
	if n.Sign() < 0 && t.T == abi.UintTy {
		return nil, fmt.Errorf("negative value for %s", t.String())
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size))
	if t.T == abi.IntTy {
		limit.Rsh(limit, 1)
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value %s overflows %s", n, t.String())
		}
	} else if n.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("value %s overflows %s", n, t.String())
	}

	switch t.GetType().Kind() {
	case reflect.Uint8:
		return uint8(n.Uint64()), nil
	case reflect.Uint16:
		return uint16(n.Uint64()), nil
	case reflect.Uint32:
		return uint32(n.Uint64()), nil
	case reflect.Uint64:
		return n.Uint64(), nil
	case reflect.Int8:
		return int8(n.Int64()), nil
	case reflect.Int16:
		return int16(n.Int64()), nil
	case reflect.Int32:
		return int32(n.Int64()), nil
	case reflect.Int64:
		return n.Int64(), nil
	default:
		return new(big.Int).Set(n), nil
	}
}
