package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrExecutionReverted is returned when a mined transaction ends with a
// failed status.
var ErrExecutionReverted = errors.New("execution reverted")

// Sender builds, signs and broadcasts transactions for one account,
// then waits for the receipt. Every external state change (approvals,
// swaps) goes through here.
type Sender struct {
	client       *Client
	key          *ecdsa.PrivateKey
	from         common.Address
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewSender creates a Sender from a hex-encoded private key.
func NewSender(client *Client, privateKeyHex string) (*Sender, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Sender{
		client:       client,
		key:          key,
		from:         crypto.PubkeyToAddress(key.PublicKey),
		pollInterval: 2 * time.Second,
		waitTimeout:  90 * time.Second,
	}, nil
}

// From returns the sending account address
func (s *Sender) From() common.Address {
	return s.from
}

// Send signs and broadcasts a call to the given contract, then waits
// until it is mined. A reverted transaction returns ErrExecutionReverted.
func (s *Sender) Send(ctx context.Context, to common.Address, data []byte) (*types.Receipt, error) {
	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit, err := s.client.EstimateGas(ctx, ethereum.CallMsg{
		From: s.from,
		To:   &to,
		Data: data,
	})
	if err != nil {
		// Estimation runs the call, so a revert reason surfaces here
		// before anything is broadcast.
		return nil, fmt.Errorf("gas estimation failed: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.client.ChainID()), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return s.waitMined(ctx, signed.Hash())
}

// waitMined polls for the receipt until the transaction is mined or the
// wait times out.
func (s *Sender) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: tx %s", ErrExecutionReverted, txHash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for tx %s: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
