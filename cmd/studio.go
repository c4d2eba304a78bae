package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var studioCmd = &cobra.Command{
	Use:   "studio <address>",
	Short: "Open the interactive contract panel",
	Long: `Open a full-screen panel for every function in the ABI.

Functions are grouped into payable, write and read sections. Select one,
fill in its parameters, and run it; the latest result stays under the
function until it is run again.

Keys:
  j/k or arrows   move between functions
  enter / e       edit parameters (runs immediately when there are none)
  x               run the selected function
  c               connect the wallet
  esc             leave the form / quit
  q               quit

Examples:
  abistudio studio 0xToken --abi ./Token.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if abiPath == "-" {
			return fmt.Errorf("the panel needs the terminal for input, load the ABI with --abi <file> or --abi-json")
		}
		s, err := loadSession(ctx, cmd, args[0])
		if err != nil {
			return err
		}
		if !s.HasWallet() {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn("no RPC configured, functions will fail until you run: abistudio config add-rpc <url>"))
		}
		return ui.RunPanel(ctx, s)
	},
}

func init() {
	addABIFlags(studioCmd)
}
