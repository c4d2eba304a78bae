package contract

import (
	"context"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

var (
	addrA    = "0x" + strings.Repeat("a", 40)
	addrB    = "0x" + strings.Repeat("b", 40)
	zeroAddr = "0x0000000000000000000000000000000000000000"
)

const balanceOfABI = `[{"type":"function","name":"balanceOf","inputs":[{"name":"who","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]`

// vaultABI mixes every entry kind and mutability.
const vaultABI = `[
  {"type":"constructor","inputs":[{"name":"owner","type":"address"}],"stateMutability":"nonpayable"},
  {"type":"function","name":"deposit","inputs":[],"outputs":[],"stateMutability":"payable"},
  {"type":"event","name":"Deposited","inputs":[{"name":"from","type":"address","indexed":true}]},
  {"type":"function","name":"balanceOf","inputs":[{"name":"who","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"withdraw","inputs":[{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"error","name":"Insufficient","inputs":[]},
  {"type":"function","name":"depositFor","inputs":[{"name":"who","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"payable"},
  {"type":"function","name":"version","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"pure"},
  {"type":"function","name":"sweep","inputs":[],"outputs":[],"stateMutability":"unexpected"},
  {"type":"receive","stateMutability":"payable"}
]`

func mustParse(s string) *ABI {
	a, err := ParseABI([]byte(s))
	if err != nil {
		panic(err)
	}
	return a
}

// fakeWallet records every request and answers with canned values.
type fakeWallet struct {
	mu sync.Mutex

	accounts   []common.Address
	requestErr error
	callResult []byte
	callErr    error
	receipt    *wallet.Receipt
	txErr      error

	calls []wallet.Request
	txs   []wallet.Request
}

var _ wallet.Wallet = (*fakeWallet)(nil)

func (f *fakeWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return f.accounts, nil
}

func (f *fakeWallet) Accounts(context.Context) ([]common.Address, error) {
	return f.accounts, nil
}

func (f *fakeWallet) Call(_ context.Context, req wallet.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.callResult, f.callErr
}

func (f *fakeWallet) Transact(_ context.Context, req wallet.Request) (*wallet.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = append(f.txs, req)
	return f.receipt, f.txErr
}

func (f *fakeWallet) SignMessage(context.Context, []byte) ([]byte, error) {
	return nil, wallet.ErrNoAccount
}

func (f *fakeWallet) touched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls) + len(f.txs)
}
