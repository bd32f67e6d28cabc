package handlers

import (
	"net/http"

	"authlink/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency health snapshot. Every Redis must be up;
// Mongo only matters when the account mirror is enabled.
func HealthHandler(mongoRequired bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := utils.GetHealthStatus()
		healthy := !status.CheckedAt.IsZero() && (status.Mongo || !mongoRequired)
		for _, up := range status.Redis {
			healthy = healthy && up
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"healthy": healthy, "dependencies": status})
	}
}
