package contract

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Decoded is the outcome of decoding a call's return data. When Undecoded is
// set, Values is nil and Raw is the only thing worth showing.
type Decoded struct {
	Values    []any // go-ethereum native values
	Display   []any // JSON-friendly rendering of Values
	Raw       []byte
	Undecoded bool
	Err       error
}

// Render returns the display string: a JSON array of values, or the raw
// payload as 0x-hex when decoding failed.
func (d Decoded) Render() string {
	if d.Undecoded {
		return hexutil.Encode(d.Raw)
	}
	out, err := json.Marshal(d.Display)
	if err != nil {
		return hexutil.Encode(d.Raw)
	}
	return string(out)
}

// Decoder unpacks return data against a function's declared outputs.
type Decoder struct {
	logger *zap.Logger
}

// NewDecoder creates a Decoder. A nil logger disables logging.
func NewDecoder(logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{logger: logger}
}

// Decode unpacks raw with fn.Outputs. It never fails: on any error,
// including a panic inside the unpacker, it returns the raw payload with
// Undecoded set and a DecodeError in Err.
func (d *Decoder) Decode(fn *Function, raw []byte) (dec Decoded) {
	dec.Raw = raw

	defer func() {
		if r := recover(); r != nil {
			dec = d.fallback(fn, raw, fmt.Errorf("panic: %v", r))
		}
	}()

	outputs, err := fn.OutputArguments()
	if err != nil {
		return d.fallback(fn, raw, err)
	}
	values, err := outputs.Unpack(raw)
	if err != nil {
		return d.fallback(fn, raw, err)
	}

	display := make([]any, len(values))
	for i, v := range values {
		display[i] = displayValue(outputs[i].Type, v)
	}
	dec.Values = values
	dec.Display = display
	return dec
}

func (d *Decoder) fallback(fn *Function, raw []byte, cause error) Decoded {
	d.logger.Warn("decode failed, showing raw payload",
		zap.String("function", fn.Signature()),
		zap.Int("bytes", len(raw)),
		zap.Error(cause))
	return Decoded{
		Raw:       raw,
		Undecoded: true,
		Err:       &Error{Kind: KindDecode, Msg: "decoding " + fn.Signature(), Err: cause},
	}
}

// displayValue converts an unpacked value into something json.Marshal
// renders readably: integers as decimal strings, addresses checksummed,
// bytes as 0x-hex and tuples as objects keyed by component name.
func displayValue(t abi.Type, v any) any {
	rv := reflect.ValueOf(v)

	switch t.T {
	case abi.IntTy, abi.UintTy:
		switch n := v.(type) {
		case *big.Int:
			return n.String()
		default:
			return fmt.Sprint(n)
		}

	case abi.AddressTy:
		if addr, ok := v.(common.Address); ok {
			return addr.Hex()
		}

	case abi.BytesTy:
		if b, ok := v.([]byte); ok {
			return hexutil.Encode(b)
		}

	case abi.FixedBytesTy, abi.FunctionTy:
		if rv.Kind() == reflect.Array {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}

	case abi.ArrayTy, abi.SliceTy:
		if rv.Kind() == reflect.Array || rv.Kind() == reflect.Slice {
			out := make([]any, rv.Len())
			for i := range out {
				out[i] = displayValue(*t.Elem, rv.Index(i).Interface())
			}
			return out
		}

	case abi.TupleTy:
		if rv.Kind() == reflect.Struct {
			out := make(map[string]any, len(t.TupleElems))
			for i, elem := range t.TupleElems {
				out[t.TupleRawNames[i]] = displayValue(*elem, rv.Field(i).Interface())
			}
			return out
		}
	}
	return v
}
