package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/hazina-bank/core_ledger/internal/middleware"
)

// transactionHandler handles the over-the-counter monetary operations.
type transactionHandler struct {
	txService       portssvc.TransactionSvcFacade
	transferService portssvc.TransferSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade, trs portssvc.TransferSvcFacade) *transactionHandler {
	return &transactionHandler{txService: ts, transferService: trs}
}

// registerTransactionRoutes registers the monetary operation routes.
func registerTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade, trs portssvc.TransferSvcFacade) {
	h := newTransactionHandler(ts, trs)

	tx := rg.Group("/transactions")
	{
		tx.POST("/deposit", h.deposit)
		tx.POST("/withdraw", h.withdraw)
		tx.POST("/transfer", h.transfer)
		tx.POST("/fees", h.collectFee)
		tx.POST("/deposit-interest", h.accrueDepositInterest)
	}
}

// respondTransactionError maps the service error taxonomy onto HTTP statuses.
// Business rule rejections are 422; malformed input is 400.
func respondTransactionError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrCurrencyMismatch),
		errors.Is(err, apperrors.ErrSameAccountTransfer),
		errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrAccountNotActive),
		errors.Is(err, apperrors.ErrMissingGLConfiguration),
		errors.Is(err, apperrors.ErrUnbalancedEntry):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "The operation conflicted with a concurrent change, please retry"})
	default:
		logger.Error("Transaction failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func (h *transactionHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.txService.Deposit(c.Request.Context(), req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "deposit")
		return
	}
	logger.Info("Deposit posted", slog.String("journal_number", resp.JournalNumber))
	c.JSON(http.StatusCreated, resp)
}

func (h *transactionHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.txService.Withdraw(c.Request.Context(), req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "withdraw")
		return
	}
	logger.Info("Withdrawal posted", slog.String("journal_number", resp.JournalNumber))
	c.JSON(http.StatusCreated, resp)
}

func (h *transactionHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.transferService.Transfer(c.Request.Context(), req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "transfer")
		return
	}
	logger.Info("Transfer posted", slog.String("journal_number", resp.JournalNumber))
	c.JSON(http.StatusCreated, resp)
}

func (h *transactionHandler) collectFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.FeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.txService.CollectFee(c.Request.Context(), req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "collect fee")
		return
	}
	logger.Info("Fee posted", slog.String("journal_number", resp.JournalNumber))
	c.JSON(http.StatusCreated, resp)
}

func (h *transactionHandler) accrueDepositInterest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DepositInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.txService.AccrueDepositInterest(c.Request.Context(), req.AccountID, req.AnnualRate, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "accrue deposit interest")
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	logger.Info("Deposit interest accrued", slog.String("journal_number", resp.JournalNumber))
	c.JSON(http.StatusCreated, resp)
}
