package contract

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// Kind classifies a failure by where it happened.
type Kind int

// Error kinds.
const (
	KindParse Kind = iota + 1
	KindValidation
	KindCapability
	KindEncoding
	KindDispatch
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindValidation:
		return "ValidationError"
	case KindCapability:
		return "CapabilityUnavailableError"
	case KindEncoding:
		return "EncodingError"
	case KindDispatch:
		return "DispatchError"
	case KindDecode:
		return "DecodeError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinel errors, usable with errors.Is on any *Error.
var (
	ErrInvalidABI           = errors.New("Invalid ABI format") //nolint:staticcheck // user-facing message
	ErrAmountMustBePositive = errors.New("amount must be greater than 0")
	ErrArgumentCount        = errors.New("argument count mismatch")
	ErrUnknownFunction      = errors.New("function not found in ABI")
	ErrAmbiguousFunction    = errors.New("function name is overloaded")
	ErrUnsupportedType      = errors.New("unsupported argument type")

	// ErrWalletUnavailable is wallet.ErrUnavailable re-exported for callers
	// that only import this package.
	ErrWalletUnavailable = wallet.ErrUnavailable
)

// Error is the single error type produced by ABI parsing, dispatch and decoding.
type Error struct {
	Kind  Kind
	Param string // offending parameter, set for encoding failures
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Param != "" {
		return fmt.Sprintf("parameter %q: %s", e.Param, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
