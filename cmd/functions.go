package cmd

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the callable functions of an ABI",
	Long: `Parse an ABI and print its functions grouped the way the panel
shows them: payable, non-payable (write) and read-only.

Events, errors, constructors and fallbacks are counted but not listed.

Examples:
  abistudio functions --abi ./Token.json
  cat Token.json | abistudio functions --abi -
  abistudio functions --abi-json '[{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"type":"uint256"}],"stateMutability":"view"}]'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readABI(cmd.InOrStdin())
		if err != nil {
			return err
		}
		a, err := contract.ParseABI(raw)
		if err != nil {
			return err
		}
		groups := contract.Classify(a.Entries)
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, ui.Banner())
		for _, g := range []struct {
			title string
			fns   []*contract.Function
		}{
			{"Payable", groups.Payable},
			{"Write", groups.NonPayable},
			{"Read", groups.ReadOnly},
		} {
			if len(g.fns) == 0 {
				continue
			}
			fmt.Fprintln(out, ui.StyleHeader.Render(fmt.Sprintf("%s (%d)", g.title, len(g.fns))))
			fmt.Fprint(out, functionTable(g.fns).Render())
			fmt.Fprintln(out)
		}

		other := len(a.Entries) - groups.Len()
		summary := fmt.Sprintf("%d functions", groups.Len())
		if other > 0 {
			summary += fmt.Sprintf(", %d other entries ignored", other)
		}
		fmt.Fprintln(out, ui.Meta(summary))
		if groups.Len() > 0 {
			fmt.Fprintln(out, ui.Hint("Call one: abistudio call <address> <function> [args...] --abi <file>"))
		}
		return nil
	},
}

func functionTable(fns []*contract.Function) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Selector", Width: 10},
		{Title: "Function", Width: 52},
		{Title: "Returns", Width: 30},
	})
	for _, fn := range fns {
		returns := strings.Join(fn.OutputTypes(), ", ")
		if returns == "" {
			returns = "-"
		}
		t.AddRow(ui.Row{hexutil.Encode(fn.Selector()), fn.Signature(), returns})
	}
	return t
}

func init() {
	addABIFlags(functionsCmd)
}
