package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidAddress is returned for address strings that are not 0x followed
// by 40 hex chars.
var ErrInvalidAddress = errors.New("invalid address")

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address. Checksum
// casing is not enforced.
func IsAddress(s string) bool {
	return len(s) == 2+2*common.AddressLength && (s[:2] == "0x" || s[:2] == "0X") && common.IsHexAddress(s)
}

// NormalizeAddress lower-cases s and parses it as a 20-byte address. The 0x
// prefix is required; checksum casing is ignored.
func NormalizeAddress(s string) (common.Address, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if !IsAddress(lower) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(lower), nil
}

// CanonicalDigest is keccak256(abi.encodePacked(address contract, address user)).
// Both addresses are lower-cased first, so checksum casing never changes the
// digest; swapping them does.
func CanonicalDigest(contract, user string) (common.Hash, error) {
	return SolidityPackedKeccak256([]string{"address", "address"}, []string{contract, user})
}

// SolidityPackedKeccak256 hashes values with Solidity's non-standard packed
// encoding, each value given as a string and tagged by its type.
func SolidityPackedKeccak256(types, values []string) (common.Hash, error) {
	packed, err := SolidityPacked(types, values)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}

// SolidityPacked concatenates values without padding, as abi.encodePacked does.
func SolidityPacked(types, values []string) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("packed encoding: %d types but %d values", len(types), len(values))
	}
	var out []byte
	for i, typ := range types {
		b, err := packValue(typ, values[i])
		if err != nil {
			return nil, fmt.Errorf("packed encoding [%d] %s: %w", i, typ, err)
		}
		out = append(out, b...)
	}
	return out, nil
}

func packValue(typ, val string) ([]byte, error) {
	switch {
	case typ == "address":
		addr, err := NormalizeAddress(val)
		if err != nil {
			return nil, err
		}
		return addr.Bytes(), nil

	case typ == "bool":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q", val)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case typ == "string":
		return []byte(val), nil

	case typ == "bytes":
		return hexutil.Decode(val)

	case strings.HasPrefix(typ, "bytes"):
		size, err := strconv.Atoi(strings.TrimPrefix(typ, "bytes"))
		if err != nil || size < 1 || size > 32 {
			return nil, fmt.Errorf("unsupported type %q", typ)
		}
		b, err := hexutil.Decode(val)
		if err != nil {
			return nil, err
		}
		if len(b) != size {
			return nil, fmt.Errorf("expected %d bytes, got %d", size, len(b))
		}
		return b, nil

	case strings.HasPrefix(typ, "uint"), strings.HasPrefix(typ, "int"):
		signed := strings.HasPrefix(typ, "int")
		bits := 256
		if suffix := strings.TrimPrefix(strings.TrimPrefix(typ, "u"), "int"); suffix != "" {
			n, err := strconv.Atoi(suffix)
			if err != nil || n < 8 || n > 256 || n%8 != 0 {
				return nil, fmt.Errorf("unsupported type %q", typ)
			}
			bits = n
		}
		n, ok := new(big.Int).SetString(strings.TrimSpace(val), 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", val)
		}
		if !fitsBits(n, bits, signed) {
			return nil, fmt.Errorf("%s overflows %s", val, typ)
		}
		word := math.PaddedBigBytes(math.U256(new(big.Int).Set(n)), 32)
		return word[32-bits/8:], nil
	}
	return nil, fmt.Errorf("unsupported type %q", typ)
}

// fitsBits reports whether n is representable as a bits-wide (u)int.
func fitsBits(n *big.Int, bits int, signed bool) bool {
	if !signed {
		return n.Sign() >= 0 && n.BitLen() <= bits
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	return n.Cmp(new(big.Int).Neg(limit)) >= 0 && n.Cmp(limit) < 0
}
