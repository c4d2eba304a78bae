package cmd

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

var (
	callValue string
	callYes   bool
	callJSON  bool
)

var callCmd = &cobra.Command{
	Use:   "call <address> <function> [args...]",
	Short: "Invoke one contract function through the ABI",
	Long: `Encode and dispatch a single function call.

Read-only functions (view, pure) are executed with eth_call and their
return values decoded. Anything else is signed by the configured wallet,
sent, and reported once the receipt is mined.

<function> is the bare name, or the full signature when the name is
overloaded. Arrays are given as JSON: '[1,2,3]' or '["0xabc…","0xdef…"]'.

Examples:
  abistudio call 0xToken balanceOf 0xUser --abi ./Token.json
  abistudio call 0xToken "transfer(address,uint256)" 0xTo 1000 --abi ./Token.json
  abistudio call 0xVault deposit --value 0.25 --abi ./Vault.json --yes`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		s, err := loadSession(ctx, cmd, args[0])
		if err != nil {
			return err
		}
		fn, err := s.ABI.Lookup(args[1])
		if err != nil {
			return err
		}
		if callValue != "" && !fn.IsPayable() {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn(fn.Signature()+" is not payable, --value ignored"))
		}

		write := !fn.IsReadOnly()
		if write && s.HasWallet() {
			accounts, err := s.Connect(ctx)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				return &contract.Error{Kind: contract.KindCapability, Err: wallet.ErrNoAccount}
			}
			if !callYes {
				if abiPath == "-" {
					return errors.New("stdin holds the ABI, pass --yes to send without a prompt")
				}
				prompt := fmt.Sprintf("Send %s to %s from %s?", fn.Signature(), ui.TruncateAddr(args[0]), ui.TruncateAddr(accounts[0].Hex()))
				if !ui.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt) {
					fmt.Fprintln(cmd.ErrOrStderr(), ui.Meta("aborted"))
					return nil
				}
			}
		}

		p, err := s.Prepare(fn.Key())
		if err != nil {
			return err
		}
		p.Request.Args = args[2:]
		if fn.IsPayable() {
			p.Request.Amount = callValue
		}

		var spin *ui.Spinner
		if write && s.HasWallet() {
			spin = ui.NewSpinner(cmd.ErrOrStderr(), "waiting for "+fn.Name+" to be mined...")
			spin.Start()
		}
		r := s.Run(ctx, p)
		if spin != nil {
			spin.Stop()
		}
		s.Apply(r)

		return printResult(cmd, fn, r)
	},
}

func printResult(cmd *cobra.Command, fn *contract.Function, r contract.Result) error {
	out := cmd.OutOrStdout()
	if r.Status == contract.StatusError {
		if r.Receipt != nil {
			fmt.Fprintln(out, receiptBlock("Transaction Reverted", r.Receipt))
		}
		return r.Err
	}
	if callJSON || r.Receipt == nil {
		fmt.Fprintln(out, r.Rendered)
		return nil
	}
	fmt.Fprintln(out, receiptBlock(fn.Name+" confirmed", r.Receipt))
	return nil
}

func receiptBlock(title string, rc *wallet.Receipt) string {
	status := ui.StyleSuccess.Render("success")
	if rc.Status == 0 {
		status = ui.StyleError.Render("reverted")
	}
	return ui.KeyValueBlock(title, [][2]string{
		{"Tx Hash", rc.TxHash.Hex()},
		{"From", ui.Addr(rc.From.Hex())},
		{"To", ui.Addr(rc.To.Hex())},
		{"Status", status},
		{"Block", fmt.Sprintf("%d", rc.BlockNumber)},
		{"Gas Used", ui.Val(fmt.Sprintf("%d", rc.GasUsed))},
		{"Value", ui.Val(receiptValue(rc.ValueWei))},
	})
}

// receiptValue shows a wei string as ETH, or as given when it is not a number.
func receiptValue(weiStr string) string {
	wei, ok := new(big.Int).SetString(weiStr, 10)
	if !ok {
		return weiStr
	}
	return chain.WeiToETH(wei) + " ETH"
}

func init() {
	addABIFlags(callCmd)
	callCmd.Flags().StringVar(&callValue, "value", "", "ETH to send with a payable function, e.g. 0.25")
	callCmd.Flags().BoolVarP(&callYes, "yes", "y", false, "send without asking for confirmation")
	callCmd.Flags().BoolVar(&callJSON, "json", false, "print the raw JSON result")
}
