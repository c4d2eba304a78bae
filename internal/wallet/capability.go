package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	// ErrUnavailable means no wallet capability exists in this environment.
	ErrUnavailable = errors.New("wallet not installed")
	// ErrNoAccount means the wallet exists but has no unlocked signing account.
	ErrNoAccount = errors.New("no account connected")
)

// Wallet is the capability the dispatcher talks to: account access, read
// calls, signed transactions and message signing.
type Wallet interface {
	// RequestAccounts asks for account access and returns the granted accounts.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts returns the currently granted accounts, empty if none.
	Accounts(ctx context.Context) ([]common.Address, error)
	// Call executes a read-only call and returns the raw return bytes.
	Call(ctx context.Context, req Request) ([]byte, error)
	// Transact signs and sends a transaction and waits for its receipt.
	Transact(ctx context.Context, req Request) (*Receipt, error)
	// SignMessage produces an EIP-191 signature with the active account.
	SignMessage(ctx context.Context, payload []byte) ([]byte, error)
}

// Request is an encoded contract invocation.
type Request struct {
	To    common.Address
	Data  []byte   // 4-byte selector followed by ABI-encoded arguments
	Value *big.Int // wei; nil or zero for non-payable calls
}

// Receipt summarises a mined transaction.
type Receipt struct {
	TxHash      common.Hash    `json:"txHash"`
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	Status      uint64         `json:"status"`
	BlockNumber uint64         `json:"blockNumber"`
	GasUsed     uint64         `json:"gasUsed"`
	ValueWei    string         `json:"valueWei"`
}

// KeySource loads the signing key lazily, e.g. from the keychain.
type KeySource func() (*ecdsa.PrivateKey, error)
