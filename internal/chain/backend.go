package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// Backend is the subset of the JSON-RPC client the gateway depends on.
// *ethclient.Client satisfies it; tests substitute a fake.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial connects to the first reachable RPC endpoint and verifies the chain id
// matches the configured one.
func Dial(endpoints []string, expectedChainID int64, logger *logrus.Logger) (*ethclient.Client, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no RPC endpoints configured")
	}

	var lastErr error
	for _, endpoint := range endpoints {
		client, err := ethclient.Dial(endpoint)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"error":    err.Error(),
			}).Warn("RPC dial failed, trying next endpoint")
			lastErr = err
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		chainID, err := client.ChainID(ctx)
		cancel()
		if err != nil {
			logger.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"error":    err.Error(),
			}).Warn("RPC chain id check failed, trying next endpoint")
			client.Close()
			lastErr = err
			continue
		}

		if chainID.Int64() != expectedChainID {
			client.Close()
			return nil, fmt.Errorf("chain id mismatch: endpoint %s reports %s, expected %d",
				endpoint, chainID.String(), expectedChainID)
		}

		logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"chain_id": chainID.String(),
		}).Info("Connected to RPC endpoint")
		return client, nil
	}

	return nil, fmt.Errorf("failed to connect to any RPC endpoint: %w", lastErr)
}
