package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// EncodeCall builds calldata for fn: the 4-byte selector followed by the
// ABI-encoded arguments. The first argument that fails to convert aborts the
// call with an EncodingError naming that parameter.
func EncodeCall(fn *Function, args []string) ([]byte, error) {
	if len(args) != len(fn.Inputs) {
		return nil, &Error{
			Kind: KindValidation,
			Msg:  fmt.Sprintf("%s expects %d arguments, got %d", fn.Signature(), len(fn.Inputs), len(args)),
			Err:  ErrArgumentCount,
		}
	}

	inputs, err := fn.InputArguments()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(inputs))
	for i, in := range inputs {
		v, err := ConvertArg(in.Type, args[i])
		if err != nil {
			return nil, &Error{
				Kind:  KindEncoding,
				Param: ParamKey(i, fn.Inputs[i]),
				Msg:   fmt.Sprintf("cannot convert %q to %s", args[i], in.Type.String()),
				Err:   err,
			}
		}
		values[i] = v
	}

	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, &Error{Kind: KindEncoding, Msg: "packing arguments", Err: err}
	}
	return append(fn.Selector(), packed...), nil
}

// ConvertArg turns a raw user string into the Go value go-ethereum packs for
// t. Integers accept decimal or 0x-hex, byte types take 0x-hex, and arrays
// take a JSON array whose elements follow the same rules.
func ConvertArg(t abi.Type, raw string) (any, error) {
	s := strings.TrimSpace(raw)

	switch t.T {
	case abi.UintTy, abi.IntTy:
		n, err := parseInteger(s)
		if err != nil {
			return nil, err
		}
		return sizedInteger(t, n)

	case abi.AddressTy:
		if !wallet.IsAddress(s) {
			return nil, fmt.Errorf("invalid address")
		}
		return common.HexToAddress(s), nil

	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bool")
		}
		return b, nil

	case abi.StringTy:
		return raw, nil

	case abi.BytesTy:
		if s == "" {
			return []byte{}, nil
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes: %w", err)
		}
		return b, nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes: %w", err)
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.ArrayTy, abi.SliceTy:
		return convertList(t, s)

	case abi.TupleTy:
		return nil, fmt.Errorf("%w: tuple", ErrUnsupportedType)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t.String())
	}
}

func parseInteger(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.New("empty integer")
	}
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	if hasSign(digits) {
		return nil, fmt.Errorf("invalid integer")
	}

	n := new(big.Int)
	var ok bool
	if rest, isHex := strings.CutPrefix(strings.ToLower(digits), "0x"); isHex {
		if hasSign(rest) {
			return nil, fmt.Errorf("invalid integer")
		}
		_, ok = n.SetString(rest, 16)
	} else {
		_, ok = n.SetString(digits, 10)
	}
	if !ok {
		return nil, fmt.Errorf("invalid integer")
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// hasSign reports whether s starts with a sign big.Int.SetString would accept.
func hasSign(s string) bool {
	return strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+")
}

// sizedInteger range-checks n against t and returns the Go type t.GetType()
// expects: native ints for 8/16/32/64-bit widths, *big.Int otherwise.
func sizedInteger(t abi.Type, n *big.Int) (any, error) {
	signed := t.T == abi.IntTy
	lo, hi := new(big.Int), new(big.Int).Lsh(big.NewInt(1), uint(t.Size))
	if signed {
		hi.Rsh(hi, 1)
		lo.Neg(hi)
	}
	if n.Cmp(lo) < 0 || n.Cmp(hi) >= 0 {
		return nil, fmt.Errorf("value out of range for %s", t.String())
	}

	if signed {
		switch t.Size {
		case 8:
			return int8(n.Int64()), nil
		case 16:
			return int16(n.Int64()), nil
		case 32:
			return int32(n.Int64()), nil
		case 64:
			return n.Int64(), nil
		}
		return n, nil
	}
	switch t.Size {
	case 8:
		return uint8(n.Uint64()), nil
	case 16:
		return uint16(n.Uint64()), nil
	case 32:
		return uint32(n.Uint64()), nil
	case 64:
		return n.Uint64(), nil
	}
	return n, nil
}

// convertList decodes a JSON array and converts each element with the
// element type. JSON strings are unquoted, anything else is passed through as
// its literal text, so [1,"0x02",true] and nested arrays both work.
func convertList(t abi.Type, s string) (any, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(s), &elems); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}
	if t.T == abi.ArrayTy && len(elems) != t.Size {
		return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(elems))
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(elems), len(elems))
	}

	for i, e := range elems {
		text := string(e)
		var str string
		if json.Unmarshal(e, &str) == nil {
			text = str
		}
		v, err := ConvertArg(*t.Elem, text)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(v))
	}
	return out.Interface(), nil
}
