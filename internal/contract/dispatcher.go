package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// weiDecimals is the ETH to wei exponent.
const weiDecimals = 18

// InvocationRequest is one call as the user asked for it. Args and Amount
// are raw strings straight from the bindings.
type InvocationRequest struct {
	Contract   string
	Function   string // function key or signature
	Args       []string
	Mutability Mutability // overrides the ABI's mutability when set
	Amount     string     // ETH, payable only; "" means "0"
}

// Option configures a Dispatcher or Session.
type Option func(*options)

type options struct {
	logger *zap.Logger
	strict bool
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStrictOrdering makes a session apply only the latest-issued result per
// function.
func WithStrictOrdering(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Dispatcher validates, encodes and sends invocations through a wallet.
type Dispatcher struct {
	abi     *ABI
	wallet  wallet.Wallet
	decoder *Decoder
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher over a parsed ABI. w may be nil, in
// which case every dispatch fails with ErrWalletUnavailable.
func NewDispatcher(a *ABI, w wallet.Wallet, opts ...Option) *Dispatcher {
	o := buildOptions(opts)
	return &Dispatcher{
		abi:     a,
		wallet:  w,
		decoder: NewDecoder(o.logger),
		logger:  o.logger,
	}
}

// Dispatch runs one invocation and always returns a Result; failures come
// back as StatusError with a *Error in Err. Checks run in a fixed order so
// that nothing reaches the wallet unless every argument encoded.
func (d *Dispatcher) Dispatch(ctx context.Context, req InvocationRequest) Result {
	fn, err := d.abi.Lookup(req.Function)
	if err != nil {
		return errorResult(req.Function, err)
	}
	key := fn.Key()

	if d.wallet == nil {
		return errorResult(key, &Error{Kind: KindCapability, Err: ErrWalletUnavailable})
	}

	if len(req.Args) != len(fn.Inputs) {
		return errorResult(key, &Error{
			Kind: KindValidation,
			Msg:  fmt.Sprintf("%s expects %d arguments, got %d", fn.Signature(), len(fn.Inputs), len(req.Args)),
			Err:  ErrArgumentCount,
		})
	}

	mutability := req.Mutability
	if mutability == "" {
		mutability = fn.Mutability
	}

	var call wallet.Request
	if mutability == Payable {
		value, err := parseAmount(req.Amount)
		if err != nil {
			return errorResult(key, err)
		}
		call.Value = value
	}

	to, err := parseContract(req.Contract)
	if err != nil {
		return errorResult(key, err)
	}
	call.To = to

	data, err := EncodeCall(fn, req.Args)
	if err != nil {
		return errorResult(key, err)
	}
	call.Data = data

	d.logger.Debug("dispatching",
		zap.String("function", fn.Signature()),
		zap.String("mutability", string(mutability)),
		zap.String("to", to.Hex()))

	if mutability == View || mutability == Pure {
		return d.call(ctx, fn, call)
	}
	return d.transact(ctx, fn, call)
}

func (d *Dispatcher) call(ctx context.Context, fn *Function, req wallet.Request) Result {
	raw, err := d.wallet.Call(ctx, req)
	if err != nil {
		return errorResult(fn.Key(), d.dispatchError(fn, err))
	}
	dec := d.decoder.Decode(fn, raw)
	return Result{
		Function: fn.Key(),
		Status:   StatusSuccess,
		Rendered: dec.Render(),
		Decoded:  &dec,
	}
}

func (d *Dispatcher) transact(ctx context.Context, fn *Function, req wallet.Request) Result {
	receipt, err := d.wallet.Transact(ctx, req)
	if err != nil {
		res := errorResult(fn.Key(), d.dispatchError(fn, err))
		res.Receipt = receipt
		return res
	}
	rendered, err := json.Marshal(receipt)
	if err != nil {
		return errorResult(fn.Key(), &Error{Kind: KindDecode, Msg: "rendering receipt", Err: err})
	}
	return Result{
		Function: fn.Key(),
		Status:   StatusSuccess,
		Rendered: string(rendered),
		Receipt:  receipt,
	}
}

func (d *Dispatcher) dispatchError(fn *Function, err error) *Error {
	d.logger.Warn("dispatch failed", zap.String("function", fn.Signature()), zap.Error(err))

	if errors.Is(err, wallet.ErrNoAccount) || errors.Is(err, wallet.ErrUnavailable) {
		return &Error{Kind: KindCapability, Err: err}
	}
	if reason, ok := chain.RevertReason(err); ok && !strings.Contains(err.Error(), reason) {
		return &Error{Kind: KindDispatch, Err: &revertError{reason: reason, err: err}}
	}
	return &Error{Kind: KindDispatch, Err: err}
}

// revertError shows a decoded revert reason in place of the node's bare
// "execution reverted" message.
type revertError struct {
	reason string
	err    error
}

func (e *revertError) Error() string { return e.reason }
func (e *revertError) Unwrap() error { return e.err }

// parseAmount converts an ETH amount to wei. It must be strictly positive and
// resolve to a whole number of wei.
func parseAmount(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		s = "0"
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Msg: fmt.Sprintf("invalid amount %q", raw)}
	}
	if !amount.IsPositive() {
		return nil, &Error{Kind: KindValidation, Err: ErrAmountMustBePositive}
	}
	wei := amount.Shift(weiDecimals)
	if !wei.IsInteger() {
		return nil, &Error{Kind: KindValidation, Msg: fmt.Sprintf("amount %s has more than %d decimals", s, weiDecimals)}
	}
	return wei.BigInt(), nil
}

func parseContract(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !wallet.IsAddress(s) {
		return common.Address{}, &Error{
			Kind: KindValidation,
			Msg:  fmt.Sprintf("contract %q", s),
			Err:  wallet.ErrInvalidAddress,
		}
	}
	return common.HexToAddress(s), nil
}
