package contract

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// Session is one interaction panel: a parsed ABI bound to a contract
// address, the user's input, and the latest result per function.
type Session struct {
	ABI      *ABI
	Groups   Groups
	Contract string
	Bindings *Bindings
	Results  *ResultBook

	wallet     wallet.Wallet
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewSession parses abiJSON and prepares a panel for contract. The wallet
// may be nil; reads and writes then fail with ErrWalletUnavailable.
func NewSession(abiJSON []byte, contract string, w wallet.Wallet, opts ...Option) (*Session, error) {
	a, err := ParseABI(abiJSON)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Session{
		ABI:        a,
		Groups:     Classify(a.Entries),
		Contract:   contract,
		Bindings:   NewBindings(),
		Results:    NewResultBook(o.strict),
		wallet:     w,
		dispatcher: NewDispatcher(a, w, opts...),
		logger:     o.logger,
	}, nil
}

// Pending is an invocation that has been issued a generation but not yet run.
type Pending struct {
	Request    InvocationRequest
	Generation uint64
}

// Prepare snapshots the bindings for fnKey into a request and issues its
// generation.
func (s *Session) Prepare(fnKey string) (Pending, error) {
	fn, err := s.ABI.Lookup(fnKey)
	if err != nil {
		return Pending{}, err
	}
	req := InvocationRequest{
		Contract:   s.Contract,
		Function:   fn.Key(),
		Args:       s.Bindings.Args(fn),
		Mutability: fn.Mutability,
	}
	if fn.IsPayable() {
		req.Amount = s.Bindings.Amount(fn.Key())
	}
	return Pending{Request: req, Generation: s.Results.Begin(fn.Key())}, nil
}

// Run dispatches p without touching the result book. It may block for as
// long as the wallet does.
func (s *Session) Run(ctx context.Context, p Pending) Result {
	r := s.dispatcher.Dispatch(ctx, p.Request)
	r.Generation = p.Generation
	return r
}

// Apply stores r and reports whether it was kept.
func (s *Session) Apply(r Result) bool {
	applied := s.Results.Complete(r)
	if !applied {
		s.logger.Debug("dropping stale result",
			zap.String("function", r.Function),
			zap.Uint64("generation", r.Generation))
	}
	return applied
}

// Execute prepares, runs and applies one invocation of fnKey.
func (s *Session) Execute(ctx context.Context, fnKey string) Result {
	p, err := s.Prepare(fnKey)
	if err != nil {
		r := errorResult(fnKey, err)
		s.Results.Set(r)
		return r
	}
	r := s.Run(ctx, p)
	s.Apply(r)
	return r
}

// HasWallet reports whether a wallet capability is present.
func (s *Session) HasWallet() bool { return s.wallet != nil }

// Connect requests account access from the wallet.
func (s *Session) Connect(ctx context.Context) ([]common.Address, error) {
	if s.wallet == nil {
		return nil, &Error{Kind: KindCapability, Err: ErrWalletUnavailable}
	}
	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil {
		return nil, &Error{Kind: KindCapability, Msg: "requesting accounts", Err: err}
	}
	return accounts, nil
}

// Accounts returns the currently connected accounts, empty if none.
func (s *Session) Accounts(ctx context.Context) ([]common.Address, error) {
	if s.wallet == nil {
		return nil, &Error{Kind: KindCapability, Err: ErrWalletUnavailable}
	}
	return s.wallet.Accounts(ctx)
}
