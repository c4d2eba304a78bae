package cmd

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

const (
	testKeyHex     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	goldenSignatureAB = "0xa837748b010afe8468ee7a0c5c687df215b8bd81ccada92ef237326f7530bd44" +
		"1539a0f3adc1cfcf80a1cd7db403bc4868ae09068cb00fd1ea9c1ef0a2ac4f521b"
)

var (
	addrA = "0x" + strings.Repeat("a", 40)
	addrB = "0x" + strings.Repeat("b", 40)
)

const tokenABI = `[
  {"type":"function","name":"balanceOf","inputs":[{"name":"who","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
  {"type":"function","name":"deposit","inputs":[],"outputs":[],"stateMutability":"payable"},
  {"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

// cli runs the root command against a private config directory.
type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, dir: t.TempDir()}
}

// run executes args with stdin and returns stdout, stderr and the error.
func (c *cli) run(stdin string, args ...string) (string, string, error) {
	c.t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", c.dir}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into
// each other through the package-level flag variables.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// stubWallet makes openWallet return w. A nil w means no capability.
func stubWallet(t *testing.T, w *fakeWallet) {
	t.Helper()
	orig := openWallet
	openWallet = func(context.Context) (wallet.Wallet, error) {
		if w == nil {
			return nil, nil
		}
		return w, nil
	}
	t.Cleanup(func() { openWallet = orig })
}

// stubKeystore makes newKeystore return ks.
// memKeystore returns a Keystore over an in-memory keyring, with the
// environment override cleared.
func memKeystore(t *testing.T) *wallet.Keystore {
	t.Helper()
	t.Setenv(wallet.KeyEnvVar, "")
	return wallet.NewKeystore(keyring.NewArrayKeyring(nil))
}

func stubKeystore(t *testing.T, ks wallet.KeystoreBackend) {
	t.Helper()
	orig := newKeystore
	newKeystore = func() wallet.KeystoreBackend { return ks }
	t.Cleanup(func() { newKeystore = orig })
}

// fakeWallet records requests and answers with canned values.
type fakeWallet struct {
	mu sync.Mutex

	accounts   []common.Address
	callResult []byte
	callErr    error
	receipt    *wallet.Receipt
	txErr      error

	calls []wallet.Request
	txs   []wallet.Request
}

func (f *fakeWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	if len(f.accounts) == 0 {
		return nil, wallet.ErrNoAccount
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
