package cmd

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/ui"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

var keyImportHex string

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the wallet signing key",
}

var keyImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Store a private key in the OS keychain and make it the wallet key",
	Long: `Import a hex private key into the OS keychain.

The key is validated first, then stored under <name>, and the config's
key_ref is pointed at it. The wallet unlocks it on "connect" or on the
first write.

Examples:
  abistudio key import deployer
  abistudio key import deployer --key 0xac09...ff80`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexKey := keyImportHex
		if hexKey == "" {
			var err error
			hexKey, err = readSecret(cmd, "Private key")
			if err != nil {
				return err
			}
		}
		key, err := wallet.ParseCredential(hexKey)
		if err != nil {
			return err
		}

		ref, err := newKeystore().Store(args[0], hexKey)
		if err != nil {
			return fmt.Errorf("storing key: %w", err)
		}
		cfg.KeyRef = ref
		if err := cfg.Save(); err != nil {
			return err
		}

		logger.Info("signing key imported")
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Key Imported", [][2]string{
			{"Name", args[0]},
			{"Address", ui.Addr(crypto.PubkeyToAddress(key.PublicKey).Hex())},
			{"Keychain Ref", ref},
		}))
		fmt.Fprintln(cmd.OutOrStdout(), ui.Hint("Unlock it with: abistudio connect"))
		return nil
	},
}

var keyRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete the wallet key from the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.KeyRef == "" {
			return errors.New("no key imported")
		}
		if err := newKeystore().Delete(cfg.KeyRef); err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}
		ref := cfg.KeyRef
		cfg.KeyRef = ""
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed "+ref))
		return nil
	},
}

func init() {
	keyImportCmd.Flags().StringVar(&keyImportHex, "key", "", "hex private key (prompted for when omitted)")
	keyCmd.AddCommand(keyImportCmd, keyRemoveCmd)
}
