package dto

import "encoding/json"

// DepositRequest deposits native currency into the bank contract. Signing
// happens either client-side (SignedTransaction, preferred) or with the
// gateway's configured operator key; private keys are never accepted here.
type DepositRequest struct {
	AmountInEther     json.Number `json:"amount_in_ether"`
	SignedTransaction string      `json:"signed_transaction,omitempty"`
}

// WithdrawRequest withdraws a previously deposited amount.
type WithdrawRequest struct {
	AmountInEther     json.Number `json:"amount_in_ether"`
	SignedTransaction string      `json:"signed_transaction,omitempty"`
}

// TransferRequest moves an in-contract balance to another address.
type TransferRequest struct {
	ToAddress         string      `json:"to_address"`
	AmountInEther     json.Number `json:"amount_in_ether"`
	SignedTransaction string      `json:"signed_transaction,omitempty"`
}

// BalanceRequest queries the in-contract balance of an address.
type BalanceRequest struct {
	Address string `json:"address" binding:"required"`
}

// TxResponse is returned by every mutating gateway operation.
type TxResponse struct {
	Message         string `json:"message"`
	TransactionHash string `json:"transaction_hash"`
}

// BalanceResponse is the response for a per-address balance query.
type BalanceResponse struct {
	Address    string `json:"address"`
	BalanceEth string `json:"balance_eth"`
}

// ContractBalanceResponse is the response for the total contract balance.
type ContractBalanceResponse struct {
	ContractBalanceEth string `json:"contract_balance_eth"`
}

// TransactionRecord is one on-chain history entry, amount rendered in ether.
type TransactionRecord struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Amount          string `json:"amount"`
	TransactionType string `json:"transactionType"`
	Timestamp       uint64 `json:"timestamp"`
}

// TransactionsResponse wraps the contract's transaction history.
type TransactionsResponse struct {
	Transactions []TransactionRecord `json:"transactions"`
}
