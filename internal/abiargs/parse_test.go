package abiargs

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractScope/internal/model"
)

func TestGetArgsArray(t *testing.T) {
	inputs := []model.AbiParameter{
		{Name: "amt", Type: "uint256"},
		{Name: "to", Type: "address"},
		{Name: "flag", Type: "bool"},
		{Name: "missing", Type: "uint8"},
	}
	got, err := GetArgsArray(inputs, map[string]string{
		"amt":  "1000",
		"to":   "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"flag": "TRUE",
	})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, big.NewInt(1000), got[0])
	assert.Equal(t, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", got[1])
	assert.Equal(t, true, got[2])
	assert.Equal(t, big.NewInt(0), got[3])
}

func TestGetArgsArrayPropagatesIntegerFailure(t *testing.T) {
	_, err := GetArgsArray([]model.AbiParameter{{Name: "amt", Type: "uint256"}}, map[string]string{"amt": "lots"})
	assert.Error(t, err)
}

func TestParseArgumentValue(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		v, err := ParseArgumentValue("true", "bool")
		require.NoError(t, err)
		assert.Equal(t, true, v)

		v, err = ParseArgumentValue("1", "bool")
		require.NoError(t, err)
		assert.Equal(t, false, v)
	})

	t.Run("hex integer", func(t *testing.T) {
		v, err := ParseArgumentValue("0x7b", "uint256")
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(123), v)
	})

	t.Run("leading zeros stay decimal", func(t *testing.T) {
		for input, want := range map[string]int64{"010": 10, "09": 9, "0x1f": 31, "-007": -7} {
			require.True(t, ValidateSolidityType(input, "int256", nil).IsValid, input)
			v, err := ParseArgumentValue(input, "int256")
			require.NoError(t, err, input)
			assert.Equal(t, big.NewInt(want), v, input)
		}
	})

	t.Run("integer array", func(t *testing.T) {
		v, err := ParseArgumentValue("[1,2,3]", "uint256[]")
		require.NoError(t, err)
		assert.Equal(t, []interface{}{big.NewInt(1), big.NewInt(2), big.NewInt(3)}, v)
	})

	t.Run("large integer array keeps precision", func(t *testing.T) {
		v, err := ParseArgumentValue(`[`+maxUint256+`, "0x10"]`, "uint256[]")
		require.NoError(t, err)
		want, _ := new(big.Int).SetString(maxUint256, 10)
		assert.Equal(t, []interface{}{want, big.NewInt(16)}, v)
	})

	t.Run("bool array", func(t *testing.T) {
		v, err := ParseArgumentValue(`[true, "false", "True"]`, "bool[]")
		require.NoError(t, err)
		assert.Equal(t, []interface{}{true, false, true}, v)
	})

	t.Run("address array passes through", func(t *testing.T) {
		v, err := ParseArgumentValue(`["0x01", "0x02"]`, "address[]")
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"0x01", "0x02"}, v)
	})

	t.Run("nested array passes through", func(t *testing.T) {
		v, err := ParseArgumentValue(`[[1,2],[3]]`, "uint256[][]")
		require.NoError(t, err)
		assert.Equal(t, []interface{}{
			[]interface{}{json.Number("1"), json.Number("2")},
			[]interface{}{json.Number("3")},
		}, v)
	})

	t.Run("malformed array falls back to input", func(t *testing.T) {
		v, err := ParseArgumentValue("[1,2", "uint256[]")
		require.NoError(t, err)
		assert.Equal(t, "[1,2", v)
	})

	t.Run("non-array JSON falls back to input", func(t *testing.T) {
		v, err := ParseArgumentValue(`{"a":1}`, "uint256[]")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, v)
	})

	t.Run("strings pass through", func(t *testing.T) {
		v, err := ParseArgumentValue("0xdeadbeef", "bytes4")
		require.NoError(t, err)
		assert.Equal(t, "0xdeadbeef", v)
	})

	t.Run("bad integer element", func(t *testing.T) {
		_, err := ParseArgumentValue(`["x"]`, "uint8[]")
		assert.Error(t, err)
	})
}
