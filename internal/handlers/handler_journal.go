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

// journalHandler handles HTTP requests for posted journal entries.
type journalHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newJournalHandler(ls portssvc.LedgerSvcFacade) *journalHandler {
	return &journalHandler{ledgerService: ls}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newJournalHandler(ledgerService)

	journals := rg.Group("/journals")
	{
		journals.GET("/:id", h.getJournal)
		journals.GET("", h.listJournalsBySource)
		journals.POST("/:id/reverse", h.reverseJournal)
	}
}

func (h *journalHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journal, err := h.ledgerService.GetJournalByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		} else {
			logger.Error("Failed to get journal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journal"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

func (h *journalHandler) listJournalsBySource(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sourceType := c.Query("sourceType")
	sourceID := c.Query("sourceID")
	if sourceType == "" || sourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceType and sourceID query parameters are required"})
		return
	}

	journals, err := h.ledgerService.ListJournalsBySource(c.Request.Context(), sourceType, sourceID)
	if err != nil {
		logger.Error("Failed to list journals", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list journals"})
		return
	}
	responses := make([]dto.JournalResponse, len(journals))
	for i := range journals {
		responses[i] = dto.ToJournalResponse(&journals[i])
	}
	c.JSON(http.StatusOK, gin.H{"journals": responses})
}

func (h *journalHandler) reverseJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.ledgerService.ReverseJournal(c.Request.Context(), journalID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrAlreadyPosted):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConcurrencyConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "The journal was modified concurrently, please retry"})
		default:
			logger.Error("Failed to reverse journal", slog.String("journal_id", journalID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse journal"})
		}
		return
	}

	logger.Info("Journal reversed",
		slog.String("journal_id", journalID), slog.String("reversal_number", reversal.JournalNumber))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(reversal))
}
