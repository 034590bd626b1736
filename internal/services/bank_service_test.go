package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"chainbank-backend/internal/apperrors"
	"chainbank-backend/internal/chain"
	"chainbank-backend/internal/config"
	"chainbank-backend/internal/contract"
	"chainbank-backend/internal/dto"
	"chainbank-backend/internal/models"
	"chainbank-backend/internal/repository"
)

var bankAddress = common.HexToAddress("0x00000000000000000000000000000000000000bb")

// fakeBackend satisfies chain.Backend in-process. A success receipt is stored
// for every broadcast so receipt waits return immediately.
type fakeBackend struct {
	mu         sync.Mutex
	nonce      uint64
	gasPrice   *big.Int
	sent       []*types.Transaction
	receipts   map[common.Hash]*types.Receipt
	sendErr    error
	callResult []byte
	revertNext bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nonce:    7,
		gasPrice: big.NewInt(1_000_000_000),
		receipts: make(map[common.Hash]*types.Receipt),
	}
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	status := types.ReceiptStatusSuccessful
	if f.revertNext {
		status = types.ReceiptStatusFailed
	}
	f.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(1),
	}
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	receipt, ok := f.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (f *fakeBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return f.callResult, nil
}

func (f *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1337), nil
}

func (f *fakeBackend) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestBankService(t *testing.T, backend *fakeBackend) (*BankService, repository.SubmittedTxRepository) {
	t.Helper()

	key, err := crypto.GenerateKey()
	assert.NoError(t, err)
	signer, err := chain.NewLocalKeySigner(hex.EncodeToString(crypto.FromECDSA(key)))
	assert.NoError(t, err)

	bank, err := contract.NewBank(bankAddress, contract.DefaultABI)
	assert.NoError(t, err)

	txRepo := repository.NewSubmittedTxRepository(newTestDB(t))

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.ChainConfig{
		ChainID:           1337,
		GasLimit:          210000,
		ReceiptTimeoutSec: 5,
	}
	return NewBankService(backend, signer, bank, cfg, txRepo, nil, nil, logger), txRepo
}

func TestDeposit(t *testing.T) {
	backend := newFakeBackend()
	svc, txRepo := newTestBankService(t, backend)
	ctx := context.Background()

	resp, err := svc.Deposit(ctx, dto.DepositRequest{AmountInEther: json.Number("1.5")}, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, "Deposit successful", resp.Message)
	assert.Equal(t, 1, backend.sentCount())

	tx := backend.sent[0]
	assert.Equal(t, bankAddress, *tx.To())
	assert.Equal(t, "1500000000000000000", tx.Value().String())
	assert.Equal(t, "d0e30db0", hex.EncodeToString(tx.Data()))
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, resp.TransactionHash, tx.Hash().Hex())

	record, err := txRepo.GetByIdempotencyKey(ctx, OpDeposit, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, models.TxStatusConfirmed, record.Status)
	assert.Equal(t, tx.Hash().Hex(), record.TxHash)
}

func TestDepositIdempotentReplay(t *testing.T) {
	backend := newFakeBackend()
	svc, _ := newTestBankService(t, backend)
	ctx := context.Background()

	first, err := svc.Deposit(ctx, dto.DepositRequest{AmountInEther: json.Number("1")}, "key-replay")
	assert.NoError(t, err)

	second, err := svc.Deposit(ctx, dto.DepositRequest{AmountInEther: json.Number("1")}, "key-replay")
	assert.NoError(t, err)

	assert.Equal(t, first.TransactionHash, second.TransactionHash)
	assert.Equal(t, 1, backend.sentCount())
}

func TestWithdraw(t *testing.T) {
	backend := newFakeBackend()
	svc, _ := newTestBankService(t, backend)
	ctx := context.Background()

	resp, err := svc.Withdraw(ctx, dto.WithdrawRequest{AmountInEther: json.Number("0.5")}, "")
	assert.NoError(t, err)
	assert.Equal(t, "Withdrawal successful", resp.Message)

	tx := backend.sent[0]
	assert.Equal(t, "0", tx.Value().String())
	assert.Equal(t, "2e1a7d4d", hex.EncodeToString(tx.Data()[:4]))
}

func TestTransferValidation(t *testing.T) {
	backend := newFakeBackend()
	svc, _ := newTestBankService(t, backend)
	ctx := context.Background()

	_, err := svc.Transfer(ctx, dto.TransferRequest{
		ToAddress:     "not-an-address",
		AmountInEther: json.Number("1"),
	}, "")
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	assert.Equal(t, 0, backend.sentCount())
}

func TestInvalidAmountRejected(t *testing.T) {
	backend := newFakeBackend()
	svc, _ := newTestBankService(t, backend)
	ctx := context.Background()

	for _, amount := range []string{"0", "-1", "abc", "0.0000000000000000001"} {
		_, err := svc.Deposit(ctx, dto.DepositRequest{AmountInEther: json.Number(amount)}, "")
		assert.Equal(t, apperrors.Validation, apperrors.KindOf(err), "amount %q", amount)
	}
	assert.Equal(t, 0, backend.sentCount())
}

func TestBroadcastFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.sendErr = errors.New("connection refused")
	svc, txRepo := newTestBankService(t, backend)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, dto.DepositRequest{AmountInEther: json.Number("1")}, "key-fail")
	assert.Equal(t, apperrors.Upstream, apperrors.KindOf(err))

	record, err := txRepo.GetByIdempotencyKey(ctx, OpDeposit, "key-fail")
	assert.NoError(t, err)
	assert.Equal(t, models.TxStatusFailed, record.Status)
}

func TestRevertedTransaction(t *testing.T) {
	backend := newFakeBackend()
	backend.revertNext = true
	svc, txRepo := newTestBankService(t, backend)
	ctx := context.Background()

	_, err := svc.Withdraw(ctx, dto.WithdrawRequest{AmountInEther: json.Number("1")}, "key-revert")
	assert.Equal(t, apperrors.Upstream, apperrors.KindOf(err))

	record, err := txRepo.GetByIdempotencyKey(ctx, OpWithdraw, "key-revert")
	assert.NoError(t, err)
	assert.Equal(t, models.TxStatusFailed, record.Status)
}

func TestClientSignedTransaction(t *testing.T) {
	backend := newFakeBackend()
	svc, _ := newTestBankService(t, backend)
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	assert.NoError(t, err)
	clientSigner, err := chain.NewLocalKeySigner(hex.EncodeToString(crypto.FromECDSA(key)))
	assert.NoError(t, err)

	buildSigned := func(to common.Address) string {
		tx := types.NewTx(&types.LegacyTx{
			Nonce:    0,
			To:       &to,
			Value:    big.NewInt(1_000_000_000_000_000_000),
			Gas:      210000,
			GasPrice: big.NewInt(1_000_000_000),
			Data:     common.FromHex("0xd0e30db0"),
		})
		signed, err := clientSigner.SignTx(tx, big.NewInt(1337))
		assert.NoError(t, err)
		raw, err := signed.MarshalBinary()
		assert.NoError(t, err)
		return "0x" + hex.EncodeToString(raw)
	}

	t.Run("accepted when addressed to the contract", func(t *testing.T) {
		resp, err := svc.Deposit(ctx, dto.DepositRequest{
			AmountInEther:     json.Number("1"),
			SignedTransaction: buildSigned(bankAddress),
		}, "")
		assert.NoError(t, err)
		assert.NotEmpty(t, resp.TransactionHash)
	})

	t.Run("rejected when addressed elsewhere", func(t *testing.T) {
		other := common.HexToAddress("0x00000000000000000000000000000000000000cc")
		_, err := svc.Deposit(ctx, dto.DepositRequest{
			AmountInEther:     json.Number("1"),
			SignedTransaction: buildSigned(other),
		}, "")
		assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	})

	t.Run("rejected garbage payload", func(t *testing.T) {
		_, err := svc.Deposit(ctx, dto.DepositRequest{
			AmountInEther:     json.Number("1"),
			SignedTransaction: "0xzzzz",
		}, "")
		assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	})
}

func TestNoSignerRequiresSignedTransaction(t *testing.T) {
	backend := newFakeBackend()
	svc, _ := newTestBankService(t, backend)
	svc.signer = nil
	ctx := context.Background()

	_, err := svc.Deposit(ctx, dto.DepositRequest{AmountInEther: json.Number("1")}, "")
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	assert.Equal(t, 0, backend.sentCount())
}

func TestBalanceQueries(t *testing.T) {
	backend := newFakeBackend()
	svc, _ := newTestBankService(t, backend)
	ctx := context.Background()

	// abi-encoded uint256: 2 ether
	two := new(big.Int).Mul(big.NewInt(2), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	backend.callResult = common.LeftPadBytes(two.Bytes(), 32)

	t.Run("balance", func(t *testing.T) {
		resp, err := svc.Balance(ctx, "0x1111111111111111111111111111111111111111")
		assert.NoError(t, err)
		assert.Equal(t, "2", resp.BalanceEth)
	})

	t.Run("invalid address", func(t *testing.T) {
		_, err := svc.Balance(ctx, "nope")
		assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	})

	t.Run("contract balance", func(t *testing.T) {
		resp, err := svc.ContractBalance(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "2", resp.ContractBalanceEth)
	})
}
