package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/hazina-bank/core_ledger/internal/middleware"
)

// cardHandler handles card issuance and the ATM/POS authorization endpoints.
// Declined attempts return 200 with the decline code in the body, mirroring
// how acquirer networks report outcomes.
type cardHandler struct {
	cardService portssvc.CardSvcFacade
}

func newCardHandler(cs portssvc.CardSvcFacade) *cardHandler {
	return &cardHandler{cardService: cs}
}

// registerCardRoutes registers card and authorization routes.
func registerCardRoutes(rg *gin.RouterGroup, cardService portssvc.CardSvcFacade) {
	h := newCardHandler(cardService)

	cards := rg.Group("/cards")
	{
		cards.POST("", h.issueCard)
		cards.GET("/:id/authorizations", h.listAuthorizations)
		cards.POST("/atm/withdraw", h.atmWithdrawal)
		cards.POST("/atm/balance", h.balanceInquiry)
		cards.POST("/pos/purchase", h.posPurchase)
		cards.POST("/pos/refund", h.posRefund)
	}
}

func (h *cardHandler) issueCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.IssueCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	card, err := h.cardService.IssueCard(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrAccountNotActive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to issue card", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue card"})
		}
		return
	}

	logger.Info("Card issued", slog.String("card_id", card.CardID))
	c.JSON(http.StatusCreated, dto.ToCardResponse(card))
}

func (h *cardHandler) listAuthorizations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	auths, err := h.cardService.ListCardAuthorizations(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		logger.Error("Failed to list authorizations", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list authorizations"})
		return
	}
	responses := make([]dto.AuthorizationResponse, len(auths))
	for i := range auths {
		responses[i] = dto.ToAuthorizationResponse(&auths[i], "")
	}
	c.JSON(http.StatusOK, gin.H{"authorizations": responses})
}

// respondAuthorization writes a terminal authorization result. Declines are a
// recorded outcome, not a transport failure, so both paths are 200.
func respondAuthorization(c *gin.Context, logger *slog.Logger, resp *dto.AuthorizationResponse, err error, action string) {
	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrencyConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "The operation conflicted with a concurrent change, please retry"})
			return
		}
		logger.Error("Authorization processing failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process " + action})
		return
	}
	if resp.DeclineCode != 0 {
		logger.Info("Authorization declined",
			slog.String("action", action), slog.Int("decline_code", resp.DeclineCode))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *cardHandler) atmWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ATMWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.cardService.ATMWithdrawal(c.Request.Context(), req)
	respondAuthorization(c, logger, resp, err, "ATM withdrawal")
}

func (h *cardHandler) balanceInquiry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BalanceInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.cardService.BalanceInquiry(c.Request.Context(), req)
	respondAuthorization(c, logger, resp, err, "balance inquiry")
}

func (h *cardHandler) posPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.POSPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.cardService.POSPurchase(c.Request.Context(), req)
	respondAuthorization(c, logger, resp, err, "POS purchase")
}

func (h *cardHandler) posRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.POSRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.cardService.POSRefund(c.Request.Context(), req)
	respondAuthorization(c, logger, resp, err, "POS refund")
}
