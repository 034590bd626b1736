package contract

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"chainbank-backend/internal/chain"
)

// DefaultABI matches the deployed Bank contract interface. A deployment
// artifact on disk overrides it when configured.
const DefaultABI = `[
	{"inputs":[],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"amount","type":"uint256"}],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getBalance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getContractBalance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getTransactions","outputs":[{"components":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"},{"name":"transactionType","type":"string"},{"name":"timestamp","type":"uint256"}],"name":"","type":"tuple[]"}],"stateMutability":"view","type":"function"}
]`

// TransactionRecord mirrors the Bank contract's Transaction struct.
type TransactionRecord struct {
	From            common.Address
	To              common.Address
	Amount          *big.Int
	TransactionType string
	Timestamp       *big.Int
}

// Bank is a typed proxy around the deployed contract's ABI: calldata packing
// for the mutating functions, eth_call plus unpacking for the views.
type Bank struct {
	abi     abi.ABI
	address common.Address
}

// LoadABIFile reads an ABI JSON artifact; callers fall back to DefaultABI
// when the path does not exist.
func LoadABIFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read ABI file %s: %w", path, err)
	}
	return string(data), nil
}

// NewBank parses the ABI and binds it to the deployed address.
func NewBank(address common.Address, abiJSON string) (*Bank, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Bank ABI: %w", err)
	}
	return &Bank{abi: parsed, address: address}, nil
}

// Address returns the deployed contract address.
func (b *Bank) Address() common.Address {
	return b.address
}

// PackDeposit packs calldata for deposit(); the deposited amount travels in
// the transaction value field.
func (b *Bank) PackDeposit() ([]byte, error) {
	return b.abi.Pack("deposit")
}

// PackWithdraw packs calldata for withdraw(amount).
func (b *Bank) PackWithdraw(amountWei *big.Int) ([]byte, error) {
	return b.abi.Pack("withdraw", amountWei)
}

// PackTransfer packs calldata for transfer(to, amount).
func (b *Bank) PackTransfer(to common.Address, amountWei *big.Int) ([]byte, error) {
	return b.abi.Pack("transfer", to, amountWei)
}

// GetBalance calls getBalance() as from, returning that address's in-contract
// balance in wei.
func (b *Bank) GetBalance(ctx context.Context, backend chain.Backend, from common.Address) (*big.Int, error) {
	data, err := b.abi.Pack("getBalance")
	if err != nil {
		return nil, fmt.Errorf("failed to pack getBalance: %w", err)
	}

	out, err := b.call(ctx, backend, from, data)
	if err != nil {
		return nil, err
	}

	results, err := b.abi.Unpack("getBalance", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack getBalance: %w", err)
	}
	return *abi.ConvertType(results[0], new(*big.Int)).(**big.Int), nil
}

// GetContractBalance calls getContractBalance(), the total wei held by the
// contract.
func (b *Bank) GetContractBalance(ctx context.Context, backend chain.Backend) (*big.Int, error) {
	data, err := b.abi.Pack("getContractBalance")
	if err != nil {
		return nil, fmt.Errorf("failed to pack getContractBalance: %w", err)
	}

	out, err := b.call(ctx, backend, common.Address{}, data)
	if err != nil {
		return nil, err
	}

	results, err := b.abi.Unpack("getContractBalance", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack getContractBalance: %w", err)
	}
	return *abi.ConvertType(results[0], new(*big.Int)).(**big.Int), nil
}

// GetTransactions calls getTransactions() and decodes the history tuples.
func (b *Bank) GetTransactions(ctx context.Context, backend chain.Backend) ([]TransactionRecord, error) {
	data, err := b.abi.Pack("getTransactions")
	if err != nil {
		return nil, fmt.Errorf("failed to pack getTransactions: %w", err)
	}

	out, err := b.call(ctx, backend, common.Address{}, data)
	if err != nil {
		return nil, err
	}

	results, err := b.abi.Unpack("getTransactions", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack getTransactions: %w", err)
	}
	return *abi.ConvertType(results[0], new([]TransactionRecord)).(*[]TransactionRecord), nil
}

func (b *Bank) call(ctx context.Context, backend chain.Backend, from common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		From: from,
		To:   &b.address,
		Data: data,
	}
	out, err := backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}
	return out, nil
}
