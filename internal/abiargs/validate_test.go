package abiargs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const maxUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

func TestValidateSolidityType(t *testing.T) {
	cases := []struct {
		name  string
		value string
		typ   string
		valid bool
		err   string
	}{
		{"empty", "", "string", false, "value required"},
		{"whitespace", "   ", "uint256", false, "value required"},
		{"address ok", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", "address", true, ""},
		{"address short", "0x742d35", "address", false, "invalid address format"},
		{"address no prefix", "742d35Cc6634C0532925a3b844Bc454e4438f44e", "address", false, "invalid address format"},
		{"uint decimal", "1000", "uint256", true, ""},
		{"uint hex", "0x7b", "uint256", true, ""},
		{"uint negative", "-1", "uint256", false, "invalid uint256 format"},
		{"uint garbage", "12a", "uint", false, "invalid uint format"},
		{"uint max", maxUint256, "uint256", true, ""},
		{"uint max plus one", "115792089237316195423570985008687907853269984665640564039457584007913129639936", "uint256", false, "value exceeds uint256 range"},
		{"uint without width is unbounded", maxUint256 + "0", "uint", true, ""},
		{"uint8 max", "255", "uint8", true, ""},
		{"uint8 overflow", "256", "uint8", false, "value exceeds uint8 range"},
		{"uint8 hex overflow", "0x100", "uint8", false, "value exceeds uint8 range"},
		{"uint8 hex ok", "0xff", "uint8", true, ""},
		{"int8 min", "-128", "int8", true, ""},
		{"int8 underflow", "-129", "int8", false, "value exceeds int8 range"},
		{"int8 overflow", "128", "int8", false, "value exceeds int8 range"},
		{"int signed hex rejected", "-0x1", "int256", false, "invalid int256 format"},
		{"bool true", "true", "bool", true, ""},
		{"bool zero", "0", "bool", true, ""},
		{"bool yes", "yes", "bool", false, "must be true, false, 1 or 0"},
		{"bool uppercase", "TRUE", "bool", false, "must be true, false, 1 or 0"},
		{"bytes32 ok", "0x" + strings.Repeat("ab", 32), "bytes32", true, ""},
		{"bytes32 short", "0xabcd", "bytes32", false, "expected 0x followed by 64 hex characters"},
		{"bytes1", "0x01", "bytes1", true, ""},
		{"bytes empty", "0x", "bytes", true, ""},
		{"bytes odd", "0xabc", "bytes", false, "expected 0x followed by an even number of hex characters"},
		{"string", "hello", "string", true, ""},
		{"array permissive", "not json", "uint256[]", true, ""},
		{"tuple permissive", "{}", "tuple", true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateSolidityType(tc.value, tc.typ, nil)
			assert.Equal(t, tc.valid, got.IsValid)
			assert.Equal(t, tc.err, got.Error)
		})
	}
}

func TestValidateSolidityTypeIsStable(t *testing.T) {
	first := ValidateSolidityType("300", "uint8", nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ValidateSolidityType("300", "uint8", nil))
	}
}

func TestValidateUnknownTypeWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	got := ValidateSolidityType("anything", "fixed128x18", zap.New(core))

	assert.True(t, got.IsValid)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "fixed128x18", logs.All()[0].ContextMap()["type"])
}

func TestIsValidFixedBytes(t *testing.T) {
	zero32 := "0x" + strings.Repeat("00", 32)
	assert.True(t, IsValidFixedBytes(zero32, 32))
	assert.False(t, IsValidFixedBytes(zero32, 16))
	assert.True(t, IsValidFixedBytes("0x"+strings.Repeat("00", 16), 16))
	assert.False(t, IsValidFixedBytes("0x00", 0))
	assert.False(t, IsValidFixedBytes("0xzz", 1))
}

func TestPlaceholderForType(t *testing.T) {
	assert.Equal(t, "123 or 0x7b", PlaceholderForType("uint256"))
	assert.Equal(t, "123 or 0x7b", PlaceholderForType("int"))
	assert.Equal(t, "true or false", PlaceholderForType("bool"))
	assert.Equal(t, "0x"+strings.Repeat("00", 4), PlaceholderForType("bytes4"))
	assert.Equal(t, "[1, 2, 3]", PlaceholderForType("uint8[]"))
	assert.True(t, IsValidAddress(PlaceholderForType("address")))
	assert.NotEmpty(t, PlaceholderForType("something-odd"))
}
