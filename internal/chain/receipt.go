package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

const (
	minedWaitWindow = 30 * time.Second
	pollInterval    = 10 * time.Second
)

// WaitReceipt blocks until the transaction is mined or maxDuration elapses.
// It first waits through bind.WaitMined under a short window, then falls back
// to periodic receipt polling until the deadline.
func WaitReceipt(ctx context.Context, backend Backend, tx *types.Transaction, maxDuration time.Duration) (*types.Receipt, error) {
	start := time.Now()
	deadline := start.Add(maxDuration)

	minedCtx, cancel := context.WithTimeout(ctx, minedWaitWindow)
	receipt, err := bind.WaitMined(minedCtx, backend, tx)
	cancel()
	if err == nil && receipt != nil {
		return receipt, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	logrus.WithFields(logrus.Fields{
		"tx_hash": tx.Hash().Hex(),
		"elapsed": time.Since(start).String(),
	}).Debug("Transaction not mined in initial window, switching to polling")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			pollCtx, pollCancel := context.WithTimeout(ctx, 15*time.Second)
			receipt, err := backend.TransactionReceipt(pollCtx, tx.Hash())
			pollCancel()
			if err == nil && receipt != nil {
				return receipt, nil
			}
		}
	}

	return nil, fmt.Errorf("transaction %s not confirmed within %v", tx.Hash().Hex(), maxDuration)
}
