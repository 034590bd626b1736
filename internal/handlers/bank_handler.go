package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chainbank-backend/internal/dto"
	"chainbank-backend/internal/services"
)

// BankHandler exposes the bank contract gateway endpoints.
type BankHandler struct {
	bank   *services.BankService
	logger *logrus.Logger
}

// NewBankHandler creates the gateway handler.
func NewBankHandler(bank *services.BankService, logger *logrus.Logger) *BankHandler {
	return &BankHandler{bank: bank, logger: logger}
}

// Deposit handles POST /deposit.
func (h *BankHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	resp, err := h.bank.Deposit(c.Request.Context(), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Withdraw handles POST /withdraw.
func (h *BankHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	resp, err := h.bank.Withdraw(c.Request.Context(), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transfer handles POST /transfer.
func (h *BankHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	resp, err := h.bank.Transfer(c.Request.Context(), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Balance handles POST /balance.
func (h *BankHandler) Balance(c *gin.Context) {
	var req dto.BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	resp, err := h.bank.Balance(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ContractBalance handles POST /contract-balance.
func (h *BankHandler) ContractBalance(c *gin.Context) {
	resp, err := h.bank.ContractBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transactions handles GET /transactions.
func (h *BankHandler) Transactions(c *gin.Context) {
	resp, err := h.bank.Transactions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BankHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request body",
		"message": err.Error(),
		"code":    "VALIDATION_ERROR",
	})
}
