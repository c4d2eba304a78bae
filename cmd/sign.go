package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mohsinsiddi/abistudio/internal/ui"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

var (
	signKey string
	signRaw bool

	verifySig     string
	verifyAddress string
)

var errSignerMismatch = errors.New("recovered signer does not match --address")

var signCmd = &cobra.Command{
	Use:   "sign <contract> <user>",
	Short: "Sign the canonical (contract, user) digest",
	Long: `Produce the signature an allow-list contract expects for a user.

The digest is keccak256(abi.encodePacked(contract, user)) with both
addresses lower-cased first, so checksummed and lower-case input give the
same result. The 32 digest bytes are then signed with EIP-191
personal_sign.

The private key is read from --key or from a hidden prompt. It is kept in
memory only and never written anywhere.

Examples:
  abistudio sign 0xContract 0xUser
  abistudio sign 0xContract 0xUser --key 0xac09...ff80 --raw`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		credential := signKey
		if credential == "" {
			var err error
			credential, err = readSecret(cmd, "Private key")
			if err != nil {
				return err
			}
		}

		sig, err := wallet.GenerateSignature(credential, args[0], args[1])
		if err != nil {
			return fmt.Errorf("signing failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if signRaw {
			fmt.Fprintln(out, sig.Hex())
			return nil
		}
		fmt.Fprintln(out, ui.KeyValueBlock("Signature Generated", [][2]string{
			{"Contract", ui.Addr(sig.Contract.Hex())},
			{"User", ui.Addr(sig.User.Hex())},
			{"Digest", sig.Digest.Hex()},
			{"Signer", ui.Addr(sig.Signer.Hex())},
			{"Signature", sig.Hex()},
		}))
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Verify: abistudio verify %s %s --sig %s --address %s",
			args[0], args[1], sig.Hex(), sig.Signer.Hex())))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <contract> <user>",
	Short: "Recover the signer of a (contract, user) signature",
	Long: `Recover who signed the canonical (contract, user) digest.

With --address the recovered signer is compared to the expected one and
the command fails on a mismatch.

Examples:
  abistudio verify 0xContract 0xUser --sig 0x...
  abistudio verify 0xContract 0xUser --sig 0x... --address 0xSigner`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if verifySig == "" {
			return errors.New("--sig is required")
		}

		recovered, err := wallet.RecoverSigner(args[0], args[1], verifySig)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		pairs := [][2]string{
			{"Contract", ui.Addr(args[0])},
			{"User", ui.Addr(args[1])},
			{"Recovered Signer", ui.Addr(recovered.Hex())},
		}
		var mismatch error
		if verifyAddress != "" {
			if strings.EqualFold(recovered.Hex(), verifyAddress) {
				pairs = append(pairs, [2]string{"Match", ui.Success("signer matches")})
			} else {
				pairs = append(pairs,
					[2]string{"Expected", ui.Addr(verifyAddress)},
					[2]string{"Match", ui.Err("signer does not match")})
				mismatch = errSignerMismatch
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Signature Verification", pairs))
		return mismatch
	},
}

// readSecret prompts for a secret without echo when stdin is a terminal,
// and reads one line otherwise so the value can be piped in.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt+": ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(prompt), err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(prompt), err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(prompt))
	}
	return line, nil
}

func init() {
	signCmd.Flags().StringVar(&signKey, "key", "", "hex private key (prompted for when omitted)")
	signCmd.Flags().BoolVar(&signRaw, "raw", false, "print only the signature")

	verifyCmd.Flags().StringVar(&verifySig, "sig", "", "hex signature to verify (required)")
	verifyCmd.Flags().StringVar(&verifyAddress, "address", "", "expected signer address (optional)")
}
