package handlers

import (
	"errors"
	"net/http"

	accountRepo "authlink/database/repository/account"
	"authlink/middleware"
	"authlink/services/account"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountHandler struct {
	Accounts account.AccountService
}

func NewAccountHandler(svc account.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: svc}
}

// GetAccountHandler returns the stored provider mirror for the caller.
func (h *AccountHandler) GetAccountHandler(c *gin.Context) {
	acct, err := h.Accounts.Profile(c.GetString(middleware.UserIDKey))
	switch {
	case errors.Is(err, accountRepo.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, account.ErrMirrorDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Account store unavailable"})
	case err != nil:
		getLogger(c).Error("Failed to load account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
	default:
		c.JSON(http.StatusOK, acct)
	}
}

// GetAccountStatsHandler reports how many mirrored accounts have completed linking.
func (h *AccountHandler) GetAccountStatsHandler(c *gin.Context) {
	n, err := h.Accounts.LinkedCount()
	switch {
	case errors.Is(err, account.ErrMirrorDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Account store unavailable"})
	case err != nil:
		getLogger(c).Error("Failed to count linked accounts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account stats"})
	default:
		c.JSON(http.StatusOK, gin.H{"linkedAccounts": n})
	}
}
