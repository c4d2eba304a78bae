package contract

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, typ string) abi.Type {
	t.Helper()
	ty, err := Parameter{Type: typ}.ABIType()
	require.NoError(t, err)
	return ty
}

func TestConvertArg(t *testing.T) {
	tests := []struct {
		typ  string
		raw  string
		want any
	}{
		{"uint256", "42", big.NewInt(42)},
		{"uint256", "0x2a", big.NewInt(42)},
		{"uint256", " 42 ", big.NewInt(42)},
		{"int256", "-5", big.NewInt(-5)},
		{"uint8", "255", uint8(255)},
		{"int8", "-128", int8(-128)},
		{"uint16", "65535", uint16(65535)},
		{"int32", "-1", int32(-1)},
		{"uint64", "18446744073709551615", uint64(18446744073709551615)},
		{"int64", "0x10", int64(16)},
		{"uint", "7", big.NewInt(7)},
		{"address", zeroAddr, common.Address{}},
		{"address", "0x" + strings.ToUpper(addrA[2:]), common.HexToAddress(addrA)},
		{"bool", "true", true},
		{"bool", "0", false},
		{"string", "", ""},
		{"string", " keep spaces ", " keep spaces "},
		{"bytes", "", []byte{}},
		{"bytes", "0xdeadbeef", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"bytes4", "0x70a08231", [4]byte{0x70, 0xa0, 0x82, 0x31}},
		{"uint8[2]", "[1,\"2\"]", [2]uint8{1, 2}},
		{"address[]", `["` + addrA + `"]`, []common.Address{common.HexToAddress(addrA)}},
		{"bool[]", "[]", []bool{}},
		{"uint16[][]", "[[1],[2,3]]", [][]uint16{{1}, {2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			got, err := ConvertArg(mustType(t, tt.typ), tt.raw)
			require.NoError(t, err)
			if want, ok := tt.want.(*big.Int); ok {
				require.IsType(t, &big.Int{}, got)
				assert.Equal(t, want.String(), got.(*big.Int).String())
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertArgErrors(t *testing.T) {
	tests := []struct {
		typ string
		raw string
	}{
		{"uint256", ""},
		{"uint256", "abc"},
		{"uint256", "1.5"},
		{"uint256", "-1"},
		{"uint256", "--5"},
		{"uint256", "-0x-5"},
		{"uint256", "+5"},
		{"uint256", "0x+5"},
		{"int256", "--5"},
		{"int256", "-+5"},
		{"int256", "-0x-5"},
		{"uint8", "256"},
		{"int8", "128"},
		{"int8", "-129"},
		{"address", ""},
		{"address", "0x1234"},
		{"address", strings.Repeat("a", 40)},
		{"address", "0x" + strings.Repeat("a", 38) + "0x"},
		{"bool", ""},
		{"bool", "maybe"},
		{"bytes", "deadbeef"},
		{"bytes", "0xabc"},
		{"bytes4", ""},
		{"bytes4", "0x0102"},
		{"uint8[2]", "[1]"},
		{"uint8[]", "1,2"},
		{"uint8[]", "[1,300]"},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			_, err := ConvertArg(mustType(t, tt.typ), tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestEncodeCallRejectsDoubleSign(t *testing.T) {
	fn := &Function{Name: "burn", Inputs: []Parameter{{Name: "amount", Type: "uint256"}}, Mutability: NonPayable}

	_, err := EncodeCall(fn, []string{"--5"})
	require.Error(t, err)
	assert.Equal(t, KindEncoding, KindOf(err))
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "amount", e.Param)
}

func TestConvertArgRejectsTuple(t *testing.T) {
	ty, err := Parameter{Type: "tuple", Components: []Parameter{{Name: "a", Type: "uint256"}}}.ABIType()
	require.NoError(t, err)

	_, err = ConvertArg(ty, `{"a":"1"}`)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestEncodeCallBalanceOf(t *testing.T) {
	fn, err := mustParse(balanceOfABI).Lookup("balanceOf")
	require.NoError(t, err)

	data, err := EncodeCall(fn, []string{zeroAddr})
	require.NoError(t, err)
	assert.Equal(t, "0x70a08231"+strings.Repeat("0", 64), hexutil.Encode(data))
}

func TestEncodeCallRoundTrip(t *testing.T) {
	fn := &Function{
		Name: "mint",
		Inputs: []Parameter{
			{Name: "to", Type: "address"},
			{Name: "amount", Type: "uint256"},
			{Name: "delta", Type: "int64"},
			{Name: "memo", Type: "string"},
		},
	}

	data, err := EncodeCall(fn, []string{addrB, "1000000000000000000000", "-7", "hello"})
	require.NoError(t, err)
	require.Equal(t, fn.Selector(), data[:4])

	inputs, err := fn.InputArguments()
	require.NoError(t, err)
	values, err := inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Len(t, values, 4)

	assert.Equal(t, common.HexToAddress(addrB), values[0])
	assert.Equal(t, "1000000000000000000000", values[1].(*big.Int).String())
	assert.Equal(t, int64(-7), values[2])
	assert.Equal(t, "hello", values[3])
}

func TestEncodeCallNamesFailingParameter(t *testing.T) {
	fn := &Function{Name: "transfer", Inputs: []Parameter{{Name: "to", Type: "address"}, {Name: "value", Type: "uint256"}}}

	_, err := EncodeCall(fn, []string{addrA, ""})
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindEncoding, e.Kind)
	assert.Equal(t, "value", e.Param)
	assert.Contains(t, err.Error(), `parameter "value"`)
}

func TestEncodeCallFirstFailureWins(t *testing.T) {
	fn := &Function{Name: "f", Inputs: []Parameter{{Type: "uint256"}, {Type: "address"}}}

	_, err := EncodeCall(fn, []string{"x", "y"})
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "arg0", e.Param)
}

func TestEncodeCallArgumentCount(t *testing.T) {
	fn := &Function{Name: "f", Inputs: []Parameter{{Name: "a", Type: "uint256"}}}

	_, err := EncodeCall(fn, nil)
	assert.ErrorIs(t, err, ErrArgumentCount)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestEncodeCallUnsupportedDeclaredType(t *testing.T) {
	fn := &Function{Name: "f", Inputs: []Parameter{{Name: "m", Type: "mapping"}}}

	_, err := EncodeCall(fn, []string{"x"})
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindEncoding, e.Kind)
	assert.Equal(t, "m", e.Param)
}
