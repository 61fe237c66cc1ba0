package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/hazina-bank/core_ledger/internal/middleware"
)

// loanHandler handles HTTP requests for loan origination and servicing.
type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

func newLoanHandler(ls portssvc.LoanSvcFacade) *loanHandler {
	return &loanHandler{loanService: ls}
}

// registerLoanRoutes registers routes related to loans.
func registerLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := newLoanHandler(loanService)

	loans := rg.Group("/loans")
	{
		loans.POST("", h.createLoan)
		loans.GET("/:id", h.getLoan)
		loans.POST("/:id/disburse", h.disburseLoan)
		loans.POST("/:id/repay", h.repayLoan)
		loans.POST("/:id/accrue", h.accrueInterest)
		loans.POST("/:id/provision", h.updateProvision)
	}
}

func (h *loanHandler) createLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "create loan")
		return
	}
	logger.Info("Loan created", slog.String("loan_number", loan.LoanNumber))
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loan, err := h.loanService.GetLoanByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		} else {
			logger.Error("Failed to get loan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve loan"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

func (h *loanHandler) disburseLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DisburseLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.DisburseLoan(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "disburse loan")
		return
	}
	logger.Info("Loan disbursed", slog.String("loan_number", loan.LoanNumber))
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

func (h *loanHandler) repayLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RepayLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.loanService.RepayLoan(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "repay loan")
		return
	}
	logger.Info("Loan repayment posted",
		slog.String("loan_number", resp.LoanNumber), slog.String("journal_number", resp.JournalNumber))
	c.JSON(http.StatusCreated, resp)
}

func (h *loanHandler) accrueInterest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AccrueLoanInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	resp, err := h.loanService.AccrueLoanInterest(c.Request.Context(), c.Param("id"), asOf, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "accrue loan interest")
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	logger.Info("Loan interest accrued", slog.String("journal_number", resp.JournalNumber))
	c.JSON(http.StatusCreated, resp)
}

func (h *loanHandler) updateProvision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.loanService.UpdateProvision(c.Request.Context(), c.Param("id"), req.DaysPastDue, userID)
	if err != nil {
		respondTransactionError(c, logger, err, "update provision")
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	logger.Info("Provision updated", slog.String("journal_number", resp.JournalNumber))
	c.JSON(http.StatusCreated, resp)
}
