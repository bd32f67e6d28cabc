package routes

import (
	"time"

	"authlink/handlers"
	"authlink/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the login, phone and linking endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	api.Use(middleware.DeviceScopeMiddleware())
	{
		api.POST("/login", hb.LoginHandler)
		api.POST("/session", hb.ExchangeSessionHandler)
		api.POST("/phone/send", hb.SendCodeHandler)
		api.POST("/phone/verify", hb.VerifyCodeHandler)

		// Protected routes (require an app token and a live session)
		protected := api.Group("")
		protected.Use(middleware.SessionAuthMiddleware(hb.Sessions))
		protected.GET("/status", hb.StatusHandler)
		protected.GET("/loading/:op", hb.LoadingHandler)
		protected.POST("/link/email", hb.LinkEmailHandler)
		protected.POST("/link/google", hb.LinkFederatedHandler)
		protected.POST("/link/phone/send", hb.LinkPhoneSendHandler)
		protected.POST("/link/phone/verify", hb.LinkPhoneVerifyHandler)
		protected.POST("/logout", hb.LogoutHandler)
		protected.GET("/account", hb.GetAccountHandler)
		protected.GET("/account/stats", hb.AccountStatsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes installs CORS and every route group.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Device-ID", "X-Device-Name"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
