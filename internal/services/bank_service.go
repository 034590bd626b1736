package services

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chainbank-backend/internal/apperrors"
	"chainbank-backend/internal/chain"
	"chainbank-backend/internal/config"
	"chainbank-backend/internal/contract"
	"chainbank-backend/internal/dto"
	"chainbank-backend/internal/events"
	"chainbank-backend/internal/metrics"
	"chainbank-backend/internal/models"
	"chainbank-backend/internal/repository"
	"chainbank-backend/internal/utils"
	"chainbank-backend/internal/ws"
)

// Gateway operation names, used for idempotency scoping, metrics and events.
const (
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpTransfer = "transfer"
)

// BankService translates gateway requests into signed contract transactions.
// Transactions are either pre-signed by the client or signed with the
// operator key from configuration; the service never touches caller keys.
type BankService struct {
	backend          chain.Backend
	signer           chain.Signer // nil when only client-signed transactions are accepted
	bank             *contract.Bank
	chainID          *big.Int
	gasLimit         uint64
	gasPriceOverride *big.Int
	receiptTimeout   time.Duration
	txRepo           repository.SubmittedTxRepository
	publisher        *events.Publisher
	hub              *ws.Hub
	logger           *logrus.Logger
}

// NewBankService wires the gateway service. signer, publisher and hub may be
// nil.
func NewBankService(
	backend chain.Backend,
	signer chain.Signer,
	bank *contract.Bank,
	cfg *config.ChainConfig,
	txRepo repository.SubmittedTxRepository,
	publisher *events.Publisher,
	hub *ws.Hub,
	logger *logrus.Logger,
) *BankService {
	var gasPriceOverride *big.Int
	if cfg.GasPrice != "" && cfg.GasPrice != "auto" {
		if price, ok := new(big.Int).SetString(cfg.GasPrice, 10); ok {
			gasPriceOverride = price
		}
	}

	return &BankService{
		backend:          backend,
		signer:           signer,
		bank:             bank,
		chainID:          big.NewInt(cfg.ChainID),
		gasLimit:         cfg.GasLimit,
		gasPriceOverride: gasPriceOverride,
		receiptTimeout:   time.Duration(cfg.ReceiptTimeoutSec) * time.Second,
		txRepo:           txRepo,
		publisher:        publisher,
		hub:              hub,
		logger:           logger,
	}
}

// Deposit submits a deposit of the given ether amount; the amount travels in
// the transaction value field.
func (s *BankService) Deposit(ctx context.Context, req dto.DepositRequest, idemKey string) (*dto.TxResponse, error) {
	wei, err := parseEtherAmount(req.AmountInEther)
	if err != nil {
		return nil, err
	}

	calldata, err := s.bank.PackDeposit()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to encode deposit call", err)
	}

	return s.submit(ctx, OpDeposit, idemKey, wei, wei, calldata, req.SignedTransaction, "Deposit successful")
}

// Withdraw submits a withdrawal of the given ether amount.
func (s *BankService) Withdraw(ctx context.Context, req dto.WithdrawRequest, idemKey string) (*dto.TxResponse, error) {
	wei, err := parseEtherAmount(req.AmountInEther)
	if err != nil {
		return nil, err
	}

	calldata, err := s.bank.PackWithdraw(wei)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to encode withdraw call", err)
	}

	return s.submit(ctx, OpWithdraw, idemKey, wei, big.NewInt(0), calldata, req.SignedTransaction, "Withdrawal successful")
}

// Transfer submits an in-contract transfer to another address.
func (s *BankService) Transfer(ctx context.Context, req dto.TransferRequest, idemKey string) (*dto.TxResponse, error) {
	if !common.IsHexAddress(req.ToAddress) {
		return nil, apperrors.Newf(apperrors.Validation, "invalid to_address: %q", req.ToAddress)
	}

	wei, err := parseEtherAmount(req.AmountInEther)
	if err != nil {
		return nil, err
	}

	calldata, err := s.bank.PackTransfer(common.HexToAddress(req.ToAddress), wei)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to encode transfer call", err)
	}

	return s.submit(ctx, OpTransfer, idemKey, wei, big.NewInt(0), calldata, req.SignedTransaction, "Transfer successful")
}

// Balance returns the in-contract balance of an address in ether.
func (s *BankService) Balance(ctx context.Context, address string) (*dto.BalanceResponse, error) {
	if !common.IsHexAddress(address) {
		return nil, apperrors.Newf(apperrors.Validation, "invalid address: %q", address)
	}

	wei, err := s.bank.GetBalance(ctx, s.backend, common.HexToAddress(address))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Upstream, "balance query failed", err)
	}

	return &dto.BalanceResponse{
		Address:    address,
		BalanceEth: utils.WeiToEther(wei),
	}, nil
}

// ContractBalance returns the contract's total balance in ether.
func (s *BankService) ContractBalance(ctx context.Context) (*dto.ContractBalanceResponse, error) {
	wei, err := s.bank.GetContractBalance(ctx, s.backend)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Upstream, "contract balance query failed", err)
	}

	return &dto.ContractBalanceResponse{ContractBalanceEth: utils.WeiToEther(wei)}, nil
}

// Transactions returns the contract's on-chain transaction history.
func (s *BankService) Transactions(ctx context.Context) (*dto.TransactionsResponse, error) {
	records, err := s.bank.GetTransactions(ctx, s.backend)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Upstream, "transaction history query failed", err)
	}

	out := make([]dto.TransactionRecord, 0, len(records))
	for _, record := range records {
		var timestamp uint64
		if record.Timestamp != nil {
			timestamp = record.Timestamp.Uint64()
		}
		out = append(out, dto.TransactionRecord{
			From:            record.From.Hex(),
			To:              record.To.Hex(),
			Amount:          utils.WeiToEther(record.Amount),
			TransactionType: record.TransactionType,
			Timestamp:       timestamp,
		})
	}

	return &dto.TransactionsResponse{Transactions: out}, nil
}

// submit is the shared sign/broadcast/confirm path for mutating operations.
func (s *BankService) submit(ctx context.Context, op, idemKey string, amountWei, value *big.Int, calldata []byte, signedHex, successMsg string) (*dto.TxResponse, error) {
	// Replay protection: a retried idempotency key returns the recorded hash
	// instead of broadcasting a second transaction.
	if idemKey != "" {
		existing, err := s.txRepo.GetByIdempotencyKey(ctx, op, idemKey)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.Internal, "idempotency lookup failed", err)
		}
		if err == nil {
			if existing.TxHash == "" {
				return nil, apperrors.Newf(apperrors.Conflict, "submission for idempotency key %q is still in flight", idemKey)
			}
			s.logger.WithFields(logrus.Fields{
				"operation": op,
				"tx_hash":   existing.TxHash,
			}).Info("Idempotent replay, returning recorded transaction hash")
			return &dto.TxResponse{Message: successMsg, TransactionHash: existing.TxHash}, nil
		}
	}

	signedTx, err := s.resolveSignedTx(ctx, value, calldata, signedHex)
	if err != nil {
		return nil, err
	}

	from, err := types.Sender(types.LatestSignerForChainID(s.chainID), signedTx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Validation, "cannot recover transaction sender", err)
	}

	record := &models.SubmittedTransaction{
		ID:          uuid.New().String(),
		Operation:   op,
		FromAddress: from.Hex(),
		ToAddress:   s.bank.Address().Hex(),
		AmountWei:   amountWei.String(),
		Status:      models.TxStatusSubmitted,
	}
	if idemKey != "" {
		record.IdempotencyKey = &idemKey
	}
	if err := s.txRepo.Create(ctx, record); err != nil {
		return nil, apperrors.Wrap(apperrors.Conflict, "failed to record submission (duplicate idempotency key?)", err)
	}

	txHash := signedTx.Hash().Hex()
	if err := s.backend.SendTransaction(ctx, signedTx); err != nil {
		metrics.ChainTransactionsTotal.WithLabelValues(op, "failed").Inc()
		_ = s.txRepo.UpdateStatus(ctx, record.ID, models.TxStatusFailed)
		s.publisher.Publish(events.SubjectTxFailed, events.TxEvent{
			Operation: op,
			From:      from.Hex(),
			AmountWei: amountWei.String(),
			Error:     err.Error(),
			Timestamp: time.Now().Unix(),
		})
		return nil, apperrors.Wrap(apperrors.Upstream, "transaction broadcast failed", err)
	}

	_ = s.txRepo.SetTxHash(ctx, record.ID, txHash)

	txEvent := events.TxEvent{
		Operation: op,
		TxHash:    txHash,
		From:      from.Hex(),
		To:        s.bank.Address().Hex(),
		AmountWei: amountWei.String(),
		Timestamp: time.Now().Unix(),
	}
	s.publisher.Publish(events.SubjectTxSubmitted, txEvent)
	s.hub.Broadcast(map[string]interface{}{"status": models.TxStatusSubmitted, "event": txEvent})

	s.logger.WithFields(logrus.Fields{
		"operation":  op,
		"tx_hash":    txHash,
		"from":       from.Hex(),
		"amount_wei": amountWei.String(),
	}).Info("Transaction broadcast, waiting for receipt")

	waitStart := time.Now()
	receipt, err := chain.WaitReceipt(ctx, s.backend, signedTx, s.receiptTimeout)
	metrics.ChainReceiptWaitDuration.WithLabelValues(op).Observe(time.Since(waitStart).Seconds())
	if err != nil {
		metrics.ChainTransactionsTotal.WithLabelValues(op, "timeout").Inc()
		return nil, apperrors.Wrap(apperrors.Upstream, "transaction submitted but confirmation timed out: "+txHash, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.ChainTransactionsTotal.WithLabelValues(op, "reverted").Inc()
		_ = s.txRepo.UpdateStatus(ctx, record.ID, models.TxStatusFailed)
		s.publisher.Publish(events.SubjectTxFailed, events.TxEvent{
			Operation: op,
			TxHash:    txHash,
			Error:     "transaction reverted",
			Timestamp: time.Now().Unix(),
		})
		return nil, apperrors.Newf(apperrors.Upstream, "transaction %s reverted", txHash)
	}

	metrics.ChainTransactionsTotal.WithLabelValues(op, "confirmed").Inc()
	_ = s.txRepo.UpdateStatus(ctx, record.ID, models.TxStatusConfirmed)
	txEvent.Timestamp = time.Now().Unix()
	s.publisher.Publish(events.SubjectTxConfirmed, txEvent)
	s.hub.Broadcast(map[string]interface{}{"status": models.TxStatusConfirmed, "event": txEvent})

	return &dto.TxResponse{Message: successMsg, TransactionHash: txHash}, nil
}

// resolveSignedTx decodes a client-signed transaction or builds and signs one
// with the operator key.
func (s *BankService) resolveSignedTx(ctx context.Context, value *big.Int, calldata []byte, signedHex string) (*types.Transaction, error) {
	if signedHex != "" {
		raw := common.FromHex(signedHex)
		if len(raw) == 0 {
			return nil, apperrors.New(apperrors.Validation, "signed_transaction is not valid hex")
		}
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(raw); err != nil {
			return nil, apperrors.Wrap(apperrors.Validation, "cannot decode signed_transaction", err)
		}
		if tx.To() == nil || *tx.To() != s.bank.Address() {
			return nil, apperrors.New(apperrors.Validation, "signed_transaction is not addressed to the bank contract")
		}
		return tx, nil
	}

	if s.signer == nil {
		return nil, apperrors.New(apperrors.Validation, "signed_transaction is required: no operator key is configured")
	}

	nonce, err := s.backend.PendingNonceAt(ctx, s.signer.Address())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Upstream, "nonce lookup failed", err)
	}

	gasPrice, err := s.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	contractAddress := s.bank.Address()
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &contractAddress,
		Value:    value,
		Gas:      s.gasLimit,
		GasPrice: gasPrice,
		Data:     calldata,
	})

	signedTx, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to sign transaction", err)
	}
	return signedTx, nil
}

// gasPrice returns the configured override, or the node's suggestion with a
// 20% bump so a fixed suggestion does not strand the transaction.
func (s *BankService) gasPrice(ctx context.Context) (*big.Int, error) {
	if s.gasPriceOverride != nil {
		return new(big.Int).Set(s.gasPriceOverride), nil
	}

	suggested, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Upstream, "gas price lookup failed", err)
	}

	bumped := new(big.Int).Mul(suggested, big.NewInt(120))
	return bumped.Div(bumped, big.NewInt(100)), nil
}

func parseEtherAmount(amount json.Number) (*big.Int, error) {
	wei, err := utils.EtherToWei(amount.String())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Validation, "invalid amount_in_ether", err)
	}
	return wei, nil
}
