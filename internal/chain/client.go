package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Backend is the subset of an EVM node the wallet capability needs.
// *ethclient.Client satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Backend = (*ethclient.Client)(nil)

// ErrReverted is returned by WaitForReceipt when the mined transaction failed.
var ErrReverted = errors.New("transaction reverted")

// healthTimeout bounds a single endpoint ping during DialHealthy.
const healthTimeout = 5 * time.Second

// Endpoint is the outcome of pinging one RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool
}

// Ping dials url and asks for the latest block number.
func Ping(ctx context.Context, url string) (Endpoint, *ethclient.Client, error) {
	ep := Endpoint{URL: url}

	timeoutCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	client, err := ethclient.DialContext(timeoutCtx, url)
	if err != nil {
		return ep, nil, fmt.Errorf("dialing %s: %w", url, err)
	}

	start := time.Now()
	n, err := client.BlockNumber(timeoutCtx)
	ep.Latency = time.Since(start)
	if err != nil {
		client.Close()
		return ep, nil, fmt.Errorf("pinging %s: %w", url, err)
	}

	ep.BlockNumber = n
	ep.Healthy = true
	return ep, client, nil
}

// DialHealthy tries each URL in order and returns a client for the first one
// that answers eth_blockNumber. Unhealthy endpoints are logged and skipped.
func DialHealthy(ctx context.Context, urls []string, logger *zap.Logger) (*ethclient.Client, Endpoint, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(urls) == 0 {
		return nil, Endpoint{}, errors.New("no RPC endpoints configured")
	}

	var errs []error
	for _, url := range urls {
		ep, client, err := Ping(ctx, url)
		if err != nil {
			logger.Warn("rpc endpoint unhealthy", zap.String("url", url), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logger.Debug("rpc endpoint selected",
			zap.String("url", url),
			zap.Duration("latency", ep.Latency),
			zap.Uint64("block", ep.BlockNumber))
		return client, ep, nil
	}
	return nil, Endpoint{}, fmt.Errorf("no healthy RPC endpoint: %w", errors.Join(errs...))
}

// ReceiptReader is the part of Backend used to poll for receipts.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. A mined but failed transaction returns its receipt and ErrReverted.
func WaitForReceipt(ctx context.Context, r ReceiptReader, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := r.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("fetching receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// RevertReason extracts a human-readable revert message from an RPC error.
// Nodes that attach revert data get it ABI-decoded; otherwise the message
// text is scanned for the usual "execution reverted" phrasing.
func RevertReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, ok := dataErr.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(s); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return "execution reverted: " + reason, true
				}
			}
		}
	}

	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted"); idx >= 0 {
		return strings.TrimSpace(msg[idx:]), true
	}
	if idx := strings.Index(msg, "revert"); idx >= 0 {
		return strings.TrimSpace(msg[idx:]), true
	}
	return msg, false
}

// WeiToETH renders a wei amount in ETH with trailing zeros trimmed.
func WeiToETH(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
