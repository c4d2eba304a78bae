package contract

import (
	"bytes"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func word(b []byte) []byte { return common.LeftPadBytes(b, 32) }

func TestDecodeBalanceOfZero(t *testing.T) {
	fn, err := mustParse(balanceOfABI).Lookup("balanceOf")
	require.NoError(t, err)

	dec := NewDecoder(nil).Decode(fn, make([]byte, 32))
	require.False(t, dec.Undecoded)
	require.Len(t, dec.Values, 1)
	assert.Equal(t, "0", dec.Values[0].(*big.Int).String())
	assert.Equal(t, `["0"]`, dec.Render())
}

func TestDecodeShortPayloadFallsBackToRaw(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fn, err := mustParse(balanceOfABI).Lookup("balanceOf")
	require.NoError(t, err)

	raw := make([]byte, 31)
	raw[30] = 0x01
	dec := NewDecoder(zap.New(core)).Decode(fn, raw)

	assert.True(t, dec.Undecoded)
	assert.Nil(t, dec.Values)
	assert.Equal(t, raw, dec.Raw)
	assert.Equal(t, hexutil.Encode(raw), dec.Render())
	assert.Equal(t, KindDecode, KindOf(dec.Err))
	assert.Equal(t, 1, logs.FilterMessage("decode failed, showing raw payload").Len())
}

func TestDecodeEmptyPayloadWithOutputsFallsBack(t *testing.T) {
	fn, _ := mustParse(balanceOfABI).Lookup("balanceOf")

	dec := NewDecoder(nil).Decode(fn, nil)
	assert.True(t, dec.Undecoded)
	assert.Equal(t, "0x", dec.Render())
}

func TestDecodeNoOutputs(t *testing.T) {
	fn := &Function{Name: "ping"}

	dec := NewDecoder(nil).Decode(fn, nil)
	assert.False(t, dec.Undecoded)
	assert.Equal(t, "[]", dec.Render())
}

func TestDecodeDisplayValues(t *testing.T) {
	fn := &Function{
		Name: "info",
		Outputs: []Parameter{
			{Name: "pos", Type: "tuple", Components: []Parameter{
				{Name: "who", Type: "address"},
				{Name: "amount", Type: "uint256"},
			}},
			{Name: "ok", Type: "bool"},
			{Name: "tag", Type: "bytes4"},
			{Name: "small", Type: "int8"},
		},
	}

	var raw []byte
	raw = append(raw, word(common.HexToAddress(addrA).Bytes())...)
	raw = append(raw, word(big.NewInt(5).Bytes())...)
	raw = append(raw, word([]byte{1})...)
	raw = append(raw, common.RightPadBytes([]byte{0xca, 0xfe, 0xba, 0xbe}, 32)...)
	raw = append(raw, bytes.Repeat([]byte{0xff}, 32)...) // int8 -1

	dec := NewDecoder(nil).Decode(fn, raw)
	require.False(t, dec.Undecoded, "%v", dec.Err)

	want := fmt.Sprintf(`[{"amount":"5","who":"%s"},true,"0xcafebabe","-1"]`, common.HexToAddress(addrA).Hex())
	assert.Equal(t, want, dec.Render())
}

// Tuples need component names to become objects; anonymous ones show raw.
func TestDecodeUnnamedTupleFallsBackToRaw(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fn := &Function{
		Name: "slot0",
		Outputs: []Parameter{
			{Name: "", Type: "tuple", Components: []Parameter{
				{Name: "", Type: "uint160"},
				{Name: "", Type: "int24"},
			}},
		},
	}

	raw := append(word(big.NewInt(42).Bytes()), word([]byte{7})...)
	dec := NewDecoder(zap.New(core)).Decode(fn, raw)

	assert.True(t, dec.Undecoded)
	assert.Nil(t, dec.Values)
	assert.Equal(t, hexutil.Encode(raw), dec.Render())
	assert.Equal(t, KindDecode, KindOf(dec.Err))
	assert.Equal(t, 1, logs.FilterMessage("decode failed, showing raw payload").Len())
}

func TestDecodeDynamicOutputs(t *testing.T) {
	fn := &Function{
		Name:    "holders",
		Outputs: []Parameter{{Name: "", Type: "address[]"}, {Name: "", Type: "string"}},
	}
	outputs, err := fn.OutputArguments()
	require.NoError(t, err)
	raw, err := outputs.Pack([]common.Address{common.HexToAddress(addrA), common.HexToAddress(addrB)}, "vault")
	require.NoError(t, err)

	dec := NewDecoder(nil).Decode(fn, raw)
	require.False(t, dec.Undecoded)
	want := fmt.Sprintf(`[["%s","%s"],"vault"]`, common.HexToAddress(addrA).Hex(), common.HexToAddress(addrB).Hex())
	assert.Equal(t, want, dec.Render())
}
