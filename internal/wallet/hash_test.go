package wallet

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrA = "0x" + strings.Repeat("a", 40)
	addrB = "0x" + strings.Repeat("b", 40)
)

// keccak256(0xaa..aa ++ 0xbb..bb) and the swapped order.
const (
	goldenDigestAB = "0x23d86a728ba3c5e24f7964d799623a23eaef3daaf3e0ff777a4cd4ef40eb6cd9"
	goldenDigestBA = "0x42914a21881c17cfe6b3f9ada2588a1b8c815175dcf6cd165a0ec76cc00581cf"
)

func TestCanonicalDigestGolden(t *testing.T) {
	d, err := CanonicalDigest(addrA, addrB)
	require.NoError(t, err)
	assert.Equal(t, goldenDigestAB, d.Hex())

	swapped, err := CanonicalDigest(addrB, addrA)
	require.NoError(t, err)
	assert.Equal(t, goldenDigestBA, swapped.Hex())
}

func TestCanonicalDigestOrderSensitive(t *testing.T) {
	pairs := [][2]string{
		{addrA, addrB},
		{testSignerAddr, "0x0000000000000000000000000000000000000001"},
		{"0x70997970C51812dc3A010C7d01b50e0d17dc79C8", "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"},
	}
	for _, p := range pairs {
		ab, err := CanonicalDigest(p[0], p[1])
		require.NoError(t, err)
		ba, err := CanonicalDigest(p[1], p[0])
		require.NoError(t, err)
		assert.NotEqual(t, ab, ba, "swapping %s and %s must change the digest", p[0], p[1])
	}
}

func TestCanonicalDigestDeterministic(t *testing.T) {
	first, err := CanonicalDigest(addrA, addrB)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := CanonicalDigest(addrA, addrB)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCanonicalDigestIgnoresCase(t *testing.T) {
	lower, err := CanonicalDigest(strings.ToLower(testSignerAddr), addrB)
	require.NoError(t, err)
	checksummed, err := CanonicalDigest(testSignerAddr, "0x"+strings.ToUpper(addrB[2:]))
	require.NoError(t, err)
	assert.Equal(t, lower, checksummed)
}

func TestCanonicalDigestRejectsMalformed(t *testing.T) {
	tests := []struct {
		name     string
		contract string
		user     string
	}{
		{"short", "0x1234", addrB},
		{"long", addrA + "aa", addrB},
		{"non-hex", "0x" + strings.Repeat("z", 40), addrB},
		{"empty user", addrA, ""},
		{"missing 0x", strings.Repeat("a", 40), addrB},
		{"missing 0x user", addrA, strings.Repeat("b", 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CanonicalDigest(tt.contract, tt.user)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestSolidityPacked(t *testing.T) {
	tests := []struct {
		name   string
		types  []string
		values []string
		want   string
	}{
		{"address", []string{"address"}, []string{addrA}, "0x" + strings.Repeat("aa", 20)},
		{"uint8", []string{"uint8"}, []string{"255"}, "0xff"},
		{"uint16 hex", []string{"uint16"}, []string{"0x0102"}, "0x0102"},
		{"int8 negative", []string{"int8"}, []string{"-1"}, "0xff"},
		{"int16 negative", []string{"int16"}, []string{"-2"}, "0xfffe"},
		{"uint defaults to 256", []string{"uint"}, []string{"1"}, "0x" + strings.Repeat("00", 31) + "01"},
		{"bool", []string{"bool", "bool"}, []string{"true", "false"}, "0x0100"},
		{"string", []string{"string"}, []string{"hi"}, "0x6869"},
		{"bytes", []string{"bytes"}, []string{"0xdeadbeef"}, "0xdeadbeef"},
		{"bytes4", []string{"bytes4"}, []string{"0x70a08231"}, "0x70a08231"},
		{"mixed", []string{"address", "uint8"}, []string{addrB, "7"}, "0x" + strings.Repeat("bb", 20) + "07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SolidityPacked(tt.types, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hexutil.Encode(got))
		})
	}
}

func TestSolidityPackedErrors(t *testing.T) {
	tests := []struct {
		name   string
		types  []string
		values []string
		errMsg string
	}{
		{"count mismatch", []string{"address"}, nil, "1 types but 0 values"},
		{"uint8 overflow", []string{"uint8"}, []string{"256"}, "overflows"},
		{"uint negative", []string{"uint256"}, []string{"-1"}, "overflows"},
		{"int8 overflow", []string{"int8"}, []string{"128"}, "overflows"},
		{"bad integer", []string{"uint256"}, []string{""}, "invalid integer"},
		{"bad bool", []string{"bool"}, []string{"yes please"}, "invalid bool"},
		{"bytes4 wrong size", []string{"bytes4"}, []string{"0x01"}, "expected 4 bytes"},
		{"bad width", []string{"uint7"}, []string{"1"}, "unsupported type"},
		{"tuple", []string{"tuple"}, []string{"x"}, "unsupported type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SolidityPacked(tt.types, tt.values)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIsAddress(t *testing.T) {
	tests := map[string]bool{
		addrA:                          true,
		testSignerAddr:                 true,
		"0X" + strings.Repeat("A", 40): true,
		strings.Repeat("a", 40):        false,
		"0x" + strings.Repeat("a", 39): false,
		"0x" + strings.Repeat("a", 41): false,
		"0x" + strings.Repeat("g", 40): false,
		"xx" + strings.Repeat("a", 40): false,
		"":                             false,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsAddress(in), in)
	}
}
