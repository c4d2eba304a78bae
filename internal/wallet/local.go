package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/config"
)

// Local is a Wallet backed by an EVM node and a locally held private key.
// Without a key it still serves read-only calls.
type Local struct {
	backend      chain.Backend
	keySource    KeySource
	pollInterval time.Duration
	gasFallback  uint64
	logger       *zap.Logger

	mu  sync.Mutex
	key *ecdsa.PrivateKey
}

var _ Wallet = (*Local)(nil)

// LocalOption configures a Local wallet.
type LocalOption func(*Local)

// WithKeySource sets where RequestAccounts loads the signing key from.
func WithKeySource(src KeySource) LocalOption {
	return func(l *Local) { l.keySource = src }
}

// WithKey unlocks the wallet with key immediately.
func WithKey(key *ecdsa.PrivateKey) LocalOption {
	return func(l *Local) { l.key = key }
}

// WithPollInterval sets the receipt polling interval.
func WithPollInterval(d time.Duration) LocalOption {
	return func(l *Local) { l.pollInterval = d }
}

// WithGasFallback sets the gas limit used when estimation fails without a revert.
func WithGasFallback(gas uint64) LocalOption {
	return func(l *Local) { l.gasFallback = gas }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) LocalOption {
	return func(l *Local) { l.logger = logger }
}

// NewLocal creates a wallet on top of backend.
func NewLocal(backend chain.Backend, opts ...LocalOption) *Local {
	l := &Local{
		backend:      backend,
		pollInterval: config.DefaultReceiptPollInterval,
		gasFallback:  config.GasLimitContractCall,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RequestAccounts unlocks the signing key (once) and returns its address.
func (l *Local) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.key == nil {
		if l.keySource == nil {
			return nil, fmt.Errorf("%w: no signing key configured", ErrNoAccount)
		}
		key, err := l.keySource()
		if err != nil {
			return nil, fmt.Errorf("unlocking account: %w", err)
		}
		l.key = key
		l.logger.Info("account connected", zap.String("address", addressOf(key).Hex()))
	}
	return []common.Address{addressOf(l.key)}, nil
}

// Accounts returns the unlocked account, or an empty list.
func (l *Local) Accounts(ctx context.Context) ([]common.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.key == nil {
		return []common.Address{}, nil
	}
	return []common.Address{addressOf(l.key)}, nil
}

// Call runs eth_call against the latest block.
func (l *Local) Call(ctx context.Context, req Request) ([]byte, error) {
	msg := ethereum.CallMsg{To: &req.To, Data: req.Data, Value: req.Value}
	if key := l.activeKey(); key != nil {
		msg.From = addressOf(key)
	}
	return l.backend.CallContract(ctx, msg, nil)
}

// Transact signs req with the unlocked key, broadcasts it and blocks until
// the receipt is available. A reverted transaction returns its receipt
// together with chain.ErrReverted.
func (l *Local) Transact(ctx context.Context, req Request) (*Receipt, error) {
	key := l.activeKey()
	if key == nil {
		return nil, ErrNoAccount
	}
	from := addressOf(key)

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	chainID, err := l.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain id: %w", err)
	}

	nonce, err := l.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	gas, err := l.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &req.To, Data: req.Data, Value: value})
	if err != nil {
		if _, reverted := chain.RevertReason(err); reverted {
			return nil, err
		}
		l.logger.Warn("gas estimation failed, using fallback",
			zap.Uint64("gas", l.gasFallback), zap.Error(err))
		gas = l.gasFallback
	}

	tx, err := l.buildTx(ctx, chainID, nonce, gas, req.To, value, req.Data)
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	if err := l.backend.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	l.logger.Info("transaction sent",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", req.To.Hex()),
		zap.String("value", value.String()))

	mined, err := chain.WaitForReceipt(ctx, l.backend, signed.Hash(), l.pollInterval)
	if mined == nil {
		return nil, err
	}
	receipt := &Receipt{
		TxHash:   signed.Hash(),
		From:     from,
		To:       req.To,
		Status:   mined.Status,
		GasUsed:  mined.GasUsed,
		ValueWei: value.String(),
	}
	if mined.BlockNumber != nil {
		receipt.BlockNumber = mined.BlockNumber.Uint64()
	}
	return receipt, err
}

// SignMessage signs payload with EIP-191 using the unlocked key.
func (l *Local) SignMessage(ctx context.Context, payload []byte) ([]byte, error) {
	key := l.activeKey()
	if key == nil {
		return nil, ErrNoAccount
	}
	return SignMessage(key, payload)
}

// buildTx prices a dynamic-fee transaction when the chain reports a base fee
// and falls back to a legacy gas-price transaction otherwise.
func (l *Local) buildTx(ctx context.Context, chainID *big.Int, nonce, gas uint64, to common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	head, err := l.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("getting latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := l.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &to,
			Value:    value,
			Data:     data,
		}), nil
	}

	tip, err := l.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	}), nil
}

func (l *Local) activeKey() *ecdsa.PrivateKey {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key
}
