package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Unlock the wallet and show the active account",
	Long: `Request account access from the configured wallet.

The wallet needs at least one RPC endpoint (abistudio config add-rpc) and
a signing key, either imported with "abistudio key import" or supplied in
the ABISTUDIO_KEY environment variable.

Examples:
  abistudio connect
  ABISTUDIO_KEY=0x... abistudio connect`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		w, err := openWallet(ctx)
		if err != nil {
			return err
		}
		if w == nil {
			return &contract.Error{Kind: contract.KindCapability, Err: contract.ErrWalletUnavailable}
		}
		accounts, err := w.RequestAccounts(ctx)
		if err != nil {
			return &contract.Error{Kind: contract.KindCapability, Msg: "requesting accounts", Err: err}
		}

		source := "keychain (" + cfg.KeyRef + ")"
		if os.Getenv(wallet.KeyEnvVar) != "" {
			source = "$" + wallet.KeyEnvVar
		}
		pairs := make([][2]string, 0, len(accounts)+2)
		for i, a := range accounts {
			pairs = append(pairs, [2]string{fmt.Sprintf("Account %d", i), ui.Addr(a.Hex())})
		}
		pairs = append(pairs,
			[2]string{"Key Source", source},
			[2]string{"RPC Endpoints", strings.Join(cfg.RPCURLs, ", ")})
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Wallet Connected", pairs))
		return nil
	},
}
