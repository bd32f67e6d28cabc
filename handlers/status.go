package handlers

import (
	"net/http"

	"authlink/middleware"
	"authlink/services/auth"

	"github.com/gin-gonic/gin"
)

// StatusHandler reports the caller's auth status, linked providers and loading flags.
func (h *AuthHandler) StatusHandler(c *gin.Context) {
	view := h.Auth.Status(c.Request.Context(), c.GetString(middleware.UserIDKey))
	c.JSON(http.StatusOK, gin.H{
		"status":   view.Status,
		"presence": view.Presence,
		"next":     view.Next,
		"session":  viewOf(view.Session),
		"loading":  h.Auth.LoadingSnapshot(c.GetString(middleware.DeviceIDKey)),
	})
}

// LoadingHandler reports a single loading flag for the calling device.
func (h *AuthHandler) LoadingHandler(c *gin.Context) {
	op, ok := auth.ParseOp(c.Param("op"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown operation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"op":      op,
		"loading": h.Auth.Loading(c.GetString(middleware.DeviceIDKey), op),
	})
}
