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

// glAccountHandler handles HTTP requests for the chart of accounts.
type glAccountHandler struct {
	glService portssvc.GLAccountSvcFacade
}

func newGLAccountHandler(gs portssvc.GLAccountSvcFacade) *glAccountHandler {
	return &glAccountHandler{glService: gs}
}

// registerGLAccountRoutes registers routes related to the chart of accounts.
func registerGLAccountRoutes(rg *gin.RouterGroup, glService portssvc.GLAccountSvcFacade) {
	h := newGLAccountHandler(glService)

	gl := rg.Group("/gl-accounts")
	{
		gl.POST("", h.createGLAccount)
		gl.GET("", h.listGLAccounts)
		gl.GET("/:code", h.getGLAccount)
	}
}

func (h *glAccountHandler) createGLAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGLAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	gl, err := h.glService.CreateGLAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create GL account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create GL account"})
		}
		return
	}

	logger.Info("GL account created", slog.String("gl_code", gl.GLCode))
	c.JSON(http.StatusCreated, dto.ToGLAccountResponse(gl))
}

func (h *glAccountHandler) getGLAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	gl, err := h.glService.GetGLAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "GL account not found"})
		} else {
			logger.Error("Failed to get GL account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve GL account"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToGLAccountResponse(gl))
}

func (h *glAccountHandler) listGLAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accounts, err := h.glService.ListGLAccounts(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list GL accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list GL accounts"})
		return
	}
	responses := make([]dto.GLAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToGLAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, gin.H{"glAccounts": responses})
}
