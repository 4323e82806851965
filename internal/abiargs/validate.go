// Package abiargs validates and converts user-entered strings into call
// arguments for contract functions.
package abiargs

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Validation is the outcome of checking one value against a declared type.
type Validation struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

var (
	addressPattern     = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	integerTypePattern = regexp.MustCompile(`^(u?)int([0-9]*)$`)
	fixedBytesPattern  = regexp.MustCompile(`^bytes([0-9]+)$`)
	unsignedDecimal    = regexp.MustCompile(`^[0-9]+$`)
	signedDecimal      = regexp.MustCompile(`^-?[0-9]+$`)
	hexNumber          = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	hexBytes           = regexp.MustCompile(`^0x([0-9a-fA-F]{2})*$`)
)

func valid() Validation { return Validation{IsValid: true} }

func invalid(format string, args ...interface{}) Validation {
	return Validation{Error: fmt.Sprintf(format, args...)}
}

// ValidateSolidityType checks value against a Solidity type before it is
// accepted as call input. Arrays and tuples are accepted as-is; the encoder
// rejects genuine mismatches later. Unknown types are accepted with a warning.
func ValidateSolidityType(value, typ string, logger *zap.Logger) Validation {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(value) == "" {
		return invalid("value required")
	}

	switch {
	case typ == "address":
		if !IsValidAddress(value) {
			return invalid("invalid address format")
		}
		return valid()
	case typ == "bool":
		switch value {
		case "true", "false", "1", "0":
			return valid()
		}
		return invalid("must be true, false, 1 or 0")
	case typ == "string":
		return valid()
	case typ == "bytes":
		if !hexBytes.MatchString(value) {
			return invalid("expected 0x followed by an even number of hex characters")
		}
		return valid()
	case isArrayType(typ), isTupleType(typ):
		return valid()
	}

	if m := integerTypePattern.FindStringSubmatch(typ); m != nil {
		return validateInteger(value, typ, m[1] == "u", m[2])
	}
	if size, ok := fixedBytesSize(typ); ok {
		if !IsValidFixedBytes(value, size) {
			return invalid("expected 0x followed by %d hex characters", size*2)
		}
		return valid()
	}

	logger.Warn("unknown solidity type, accepting value", zap.String("type", typ))
	return valid()
}

// IsValidAddress reports whether value is 0x followed by 40 hex characters.
func IsValidAddress(value string) bool {
	return addressPattern.MatchString(value)
}

// IsValidFixedBytes reports whether value is exactly size bytes of 0x hex.
func IsValidFixedBytes(value string, size int) bool {
	if size < 1 || size > 32 {
		return false
	}
	if !hexBytes.MatchString(value) {
		return false
	}
	return len(value)-2 == size*2
}

func validateInteger(value, typ string, unsigned bool, width string) Validation {
	isHex := hexNumber.MatchString(value)
	decimal := unsignedDecimal
	if !unsigned {
		decimal = signedDecimal
	}
	if !isHex && !decimal.MatchString(value) {
		return invalid("invalid %s format", typ)
	}
	if width == "" {
		return valid()
	}

	bits, err := strconv.Atoi(width)
	if err != nil || bits <= 0 {
		return invalid("invalid %s format", typ)
	}

	if isHex {
		digits := strings.TrimPrefix(value, "0x")
		if len(digits) > bits/4 {
			return invalid("value exceeds %s range", typ)
		}
		return valid()
	}

	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return invalid("invalid %s format", typ)
	}
	min, max := integerBounds(bits, unsigned)
	if n.Cmp(min) < 0 || n.Cmp(max) > 0 {
		return invalid("value exceeds %s range", typ)
	}
	return valid()
}

func integerBounds(bits int, unsigned bool) (*big.Int, *big.Int) {
	one := big.NewInt(1)
	if unsigned {
		max := new(big.Int).Lsh(one, uint(bits))
		return big.NewInt(0), max.Sub(max, one)
	}
	half := new(big.Int).Lsh(one, uint(bits-1))
	min := new(big.Int).Neg(half)
	max := new(big.Int).Sub(half, one)
	return min, max
}

func fixedBytesSize(typ string) (int, bool) {
	m := fixedBytesPattern.FindStringSubmatch(typ)
	if m == nil {
		return 0, false
	}
	size, err := strconv.Atoi(m[1])
	if err != nil || size < 1 || size > 32 {
		return 0, false
	}
	return size, true
}

func isArrayType(typ string) bool {
	return strings.HasSuffix(typ, "]")
}

func isTupleType(typ string) bool {
	return strings.HasPrefix(typ, "tuple") || strings.HasPrefix(typ, "(")
}

func isIntegerType(typ string) bool {
	return strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int")
}
