package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

var (
	abiPath   string
	abiInline string
)

// errNoABI is returned when neither --abi nor --abi-json is given.
var errNoABI = errors.New("an ABI is required: pass --abi <file>, --abi - for stdin, or --abi-json '<json>'")

func addABIFlags(c *cobra.Command) {
	c.Flags().StringVar(&abiPath, "abi", "", "ABI JSON file, or - to read stdin")
	c.Flags().StringVar(&abiInline, "abi-json", "", "ABI JSON given inline")
	c.MarkFlagsMutuallyExclusive("abi", "abi-json")
}

// readABI returns the ABI text selected by --abi / --abi-json.
func readABI(stdin io.Reader) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case abiInline != "":
		raw = []byte(abiInline)
	case abiPath == "-":
		raw, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading ABI from stdin: %w", err)
		}
	case abiPath != "":
		raw, err = os.ReadFile(abiPath)
		if err != nil {
			return nil, fmt.Errorf("reading ABI file: %w", err)
		}
	default:
		return nil, errNoABI
	}
	return unwrapArtifact(raw), nil
}

// unwrapArtifact accepts a build artifact ({"abi": [...], ...}) as well as a
// bare ABI array. Anything else is passed through for ParseABI to reject.
func unwrapArtifact(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(trimmed, &artifact); err != nil || len(artifact.ABI) == 0 {
		return raw
	}
	return artifact.ABI
}

// newKeystore opens the keystore used for the wallet signing key.
var newKeystore = func() wallet.KeystoreBackend { return wallet.DefaultKeystore() }

// openWallet builds the wallet capability from config. It returns a nil
// wallet, not an error, when no RPC endpoint is configured.
var openWallet = func(ctx context.Context) (wallet.Wallet, error) {
	if len(cfg.RPCURLs) == 0 {
		logger.Debug("no rpc endpoint configured, wallet capability absent")
		return nil, nil
	}
	client, ep, err := chain.DialHealthy(ctx, cfg.RPCURLs, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connected", zap.String("rpc", ep.URL), zap.Uint64("block", ep.BlockNumber))

	opts := []wallet.LocalOption{
		wallet.WithPollInterval(cfg.ReceiptPollInterval.Std()),
		wallet.WithGasFallback(cfg.GasLimitFallback),
		wallet.WithLogger(logger.Named("wallet")),
	}
	if cfg.KeyRef != "" || os.Getenv(wallet.KeyEnvVar) != "" {
		opts = append(opts, wallet.WithKeySource(wallet.KeystoreSource(newKeystore(), cfg.KeyRef)))
	}
	return wallet.NewLocal(client, opts...), nil
}

// loadSession reads the ABI, opens the wallet and builds a session for addr.
func loadSession(ctx context.Context, cmd *cobra.Command, addr string) (*contract.Session, error) {
	raw, err := readABI(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	w, err := openWallet(ctx)
	if err != nil {
		return nil, err
	}
	return contract.NewSession(raw, addr, w,
		contract.WithLogger(logger.Named("contract")),
		contract.WithStrictOrdering(cfg.StrictOrdering),
	)
}
