package middleware

import (
	"context"
	"net/http"
	"strings"

	"authlink/models"
	"authlink/utils"

	"github.com/gin-gonic/gin"
)

// SessionSource is the read side of the session cache.
type SessionSource interface {
	Get(ctx context.Context, uid string) models.SessionEntry
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// SessionAuthMiddleware accepts an app token issued to this device and requires
// a present session for its identity. Must run after DeviceScopeMiddleware.
func SessionAuthMiddleware(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if !strings.HasPrefix(authHeader, "Bearer ") || tokenString == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}

		uid, tokenDeviceID, err := utils.ExtractIDsFromToken(tokenString)
		if err != nil || tokenDeviceID == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}
		if tokenDeviceID != c.GetString(DeviceIDKey) {
			unauthorized(c, "Token was issued to another device")
			return
		}

		entry := sessions.Get(c.Request.Context(), uid)
		if !entry.Authenticated() {
			unauthorized(c, "Session expired, please log in again")
			return
		}

		c.Set(UserIDKey, uid)
		c.Set(SessionKey, entry)
		c.Next()
	}
}
