package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/logging"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/abistudio/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	logger  = zap.NewNop()
	verbose bool
	timeout time.Duration
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "abistudio",
	Short: "ABI-driven contract panel",
	Long: `abistudio turns a contract ABI into a working panel.

  Paste or load an ABI, point it at a deployed address, and every function
  becomes callable: reads return decoded values, writes go through the
  configured wallet and come back as a receipt.

It also produces the canonical (contract, user) signature used by
allow-list style contracts.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger, err = logging.New(logging.Options{
			Level:   cfg.LogLevel,
			File:    cfg.LogPath(),
			Verbose: verbose,
			Stderr:  cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger.Debug("config loaded", zap.String("dir", cfg.Dir()), zap.Int("rpc_urls", len(cfg.RPCURLs)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandContext returns the command's context bounded by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func init() {
	// ABISTUDIO_CONFIG_DIR env var seeds the --config flag.
	if envDir := os.Getenv("ABISTUDIO_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.abistudio)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "overall deadline for network operations (0 = none)")

	rootCmd.AddCommand(
		functionsCmd,
		callCmd,
		studioCmd,
		signCmd,
		verifyCmd,
		connectCmd,
		keyCmd,
		configCmd,
	)
}
