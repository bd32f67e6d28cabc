package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by this package.
const (
	DeviceIDKey   = "deviceID"
	DeviceNameKey = "deviceName"
	DeviceIPKey   = "deviceIP"
	UserIDKey     = "userID"
	SessionKey    = "session"
	LoggerKey     = "logger"
)

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}

// DeviceScopeMiddleware requires X-Device-ID. The device id scopes loading flags
// and is bound into every app token.
func DeviceScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader("X-Device-ID"))
		if deviceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing required device details: X-Device-ID",
			})
			return
		}
		c.Set(DeviceIDKey, deviceID)
		c.Set(DeviceNameKey, c.GetHeader("X-Device-Name"))
		c.Set(DeviceIPKey, clientIP(c))
		c.Next()
	}
}
