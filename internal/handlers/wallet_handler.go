package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reward-service/internal/services"
	"reward-service/pkg/common"
)

type WalletHandler struct {
	Wallets *services.WalletService
}

func NewWalletHandler(wallets *services.WalletService) *WalletHandler {
	return &WalletHandler{Wallets: wallets}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	memberId, ok := requesterId(c)
	if !ok {
		return
	}

	wallet, err := h.Wallets.GetBalance(memberId)
	if err != nil {
		if errors.Is(err, services.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Wallet not found", nil, http.StatusNotFound))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Unable to fetch wallet", nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":  wallet.Balance,
		"currency": wallet.Currency,
	})
}

type CreateWalletRequest struct {
	Username string `json:"username" binding:"required"`
}

// CreateWallet backfills a wallet for a member that predates the wallet table.
// Registration creates wallets for everyone else.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	memberId, ok := requesterId(c)
	if !ok {
		return
	}

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if _, err := h.Wallets.GetBalance(memberId); err == nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Wallet already exists", nil, http.StatusBadRequest))
		return
	}

	wallet, err := h.Wallets.CreateWallet(memberId, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Unable to create wallet", nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(wallet, "Wallet created"))
}

type WalletAmountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// Deposit and Debit cover the cash-in/purchase flows that live outside the
// settlement engine.
func (h *WalletHandler) Deposit(c *gin.Context) {
	memberId, ok := requesterId(c)
	if !ok {
		return
	}

	var req WalletAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	wallet, err := h.Wallets.Deposit(memberId, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Wallet not found", nil, http.StatusNotFound))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Unable to credit wallet", nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(wallet, "Wallet credited"))
}

func (h *WalletHandler) Debit(c *gin.Context) {
	memberId, ok := requesterId(c)
	if !ok {
		return
	}

	var req WalletAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	wallet, err := h.Wallets.Debit(memberId, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Wallet not found", nil, http.StatusNotFound))
		case errors.Is(err, services.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Insufficient balance", nil, http.StatusBadRequest))
		default:
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Unable to debit wallet", nil, http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(wallet, "Wallet debited"))
}
