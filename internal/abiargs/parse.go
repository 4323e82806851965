package abiargs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"contractScope/internal/model"
)

// GetArgsArray converts named string inputs into call arguments in
// declaration order. Missing names are treated as empty strings.
func GetArgsArray(inputs []model.AbiParameter, args map[string]string) ([]interface{}, error) {
	out := make([]interface{}, 0, len(inputs))
	for i, input := range inputs {
		value, err := ParseArgumentValue(args[input.Name], input.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, input.Name, err)
		}
		out = append(out, value)
	}
	return out, nil
}

// ParseArgumentValue converts one string into a typed value: integers become
// *big.Int, bools become bool, arrays are parsed as JSON with per-element
// conversion, and everything else passes through. A malformed array literal
// is returned unchanged. Only a non-numeric integer is an error.
func ParseArgumentValue(value, typ string) (interface{}, error) {
	if isArrayType(typ) {
		return parseArray(value, typ)
	}
	return parseScalar(value, typ)
}

func parseArray(value, typ string) (interface{}, error) {
	base := typ[:strings.LastIndex(typ, "[")]

	dec := json.NewDecoder(bytes.NewReader([]byte(value)))
	dec.UseNumber()
	var items []interface{}
	if err := dec.Decode(&items); err != nil || items == nil {
		return value, nil
	}
	if dec.More() {
		return value, nil
	}

	if isArrayType(base) || (!isIntegerType(base) && base != "bool") {
		return items, nil
	}
	out := make([]interface{}, 0, len(items))
	for i, item := range items {
		converted, err := parseScalar(elementString(item), base)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, converted)
	}
	return out, nil
}

func parseScalar(value, typ string) (interface{}, error) {
	switch {
	case isIntegerType(typ):
		return parseBigInt(value)
	case typ == "bool":
		return strings.EqualFold(value, "true"), nil
	default:
		return value, nil
	}
}

// parseBigInt reads decimal, or hex after a 0x prefix. Leading zeros never
// switch to octal.
func parseBigInt(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return new(big.Int), nil
	}
	digits, base := trimmed, 10
	if len(trimmed) > 2 && (trimmed[:2] == "0x" || trimmed[:2] == "0X") {
		digits, base = trimmed[2:], 16
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("cannot convert %q to integer", value)
	}
	return n, nil
}

func elementString(item interface{}) string {
	switch v := item.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
