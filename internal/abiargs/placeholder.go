package abiargs

import "strings"

// PlaceholderForType returns an example input for a Solidity type.
func PlaceholderForType(typ string) string {
	if isArrayType(typ) {
		base := typ[:strings.LastIndex(typ, "[")]
		switch {
		case isIntegerType(base):
			return `[1, 2, 3]`
		case base == "bool":
			return `[true, false]`
		case base == "address":
			return `["0x742d35Cc6634C0532925a3b844Bc454e4438f44e"]`
		default:
			return `["value1", "value2"]`
		}
	}
	if isTupleType(typ) {
		return "tuple values (JSON)"
	}

	switch {
	case typ == "address":
		return "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	case typ == "bool":
		return "true or false"
	case typ == "string":
		return "text value"
	case typ == "bytes":
		return "0x1234abcd"
	case isIntegerType(typ):
		return "123 or 0x7b"
	}
	if size, ok := fixedBytesSize(typ); ok {
		return "0x" + strings.Repeat("00", size)
	}
	return typ
}
