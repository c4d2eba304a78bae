package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rpcs := strings.Join(cfg.RPCURLs, ", ")
		if rpcs == "" {
			rpcs = ui.Meta("(none, wallet disabled)")
		}
		keyRef := cfg.KeyRef
		if keyRef == "" {
			keyRef = ui.Meta("(none)")
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Current Configuration", [][2]string{
			{"rpc_urls", rpcs},
			{"key_ref", keyRef},
			{"log_level", cfg.LogLevel},
			{"log_file", cfg.LogPath()},
			{"strict_ordering", strconv.FormatBool(cfg.StrictOrdering)},
			{"receipt_poll_interval", cfg.ReceiptPollInterval.Std().String()},
			{"gas_limit_fallback", strconv.FormatUint(cfg.GasLimitFallback, 10)},
		}))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set one configuration value and save it.

Keys: ` + strings.Join(config.Keys(), ", ") + `

Examples:
  abistudio config set rpc_urls https://rpc.sepolia.org,https://sepolia.drpc.org
  abistudio config set strict_ordering true
  abistudio config set receipt_poll_interval 500ms`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s set to %q", args[0], args[1])))
		return nil
	},
}

var configAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <url>",
	Short: "Append an RPC endpoint to the failover list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddRPC(args[0]); err != nil {
			// Already present, not fatal.
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn(err.Error()))
			return nil
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("RPC added: "+args[0]))
		return nil
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <url>",
	Short: "Remove an RPC endpoint from the failover list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("RPC removed: "+args[0]))
		return nil
	},
}

var configCheckRPCCmd = &cobra.Command{
	Use:   "check-rpc",
	Short: "Ping every configured RPC endpoint",
	Long: `Ping each RPC endpoint in the failover list, in order, and report its
latency and latest block. The wallet uses the first healthy one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.RPCURLs) == 0 {
			return errors.New("no RPC endpoints configured, add one with: abistudio config add-rpc <url>")
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 40},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 10},
		})
		healthy := 0
		for _, url := range cfg.RPCURLs {
			ep, client, err := chain.Ping(ctx, url)
			if err != nil {
				logger.Debug("rpc check failed", zap.String("url", url), zap.Error(err))
				t.AddRow(ui.Row{url, "-", "-", "down"})
				continue
			}
			client.Close()
			healthy++
			t.AddRow(ui.Row{url, fmt.Sprintf("%dms", ep.Latency.Milliseconds()), strconv.FormatUint(ep.BlockNumber, 10), "healthy"})
		}

		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		if healthy == 0 {
			return errors.New("no healthy RPC endpoint")
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configAddRPCCmd, configRemoveRPCCmd, configCheckRPCCmd)
}
