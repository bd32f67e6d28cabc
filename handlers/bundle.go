package handlers

import (
	"authlink/middleware"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups every endpoint handler and the middleware they need.
type HandlerBundle struct {
	Sessions middleware.SessionSource

	// Public auth endpoints
	LoginHandler           gin.HandlerFunc
	ExchangeSessionHandler gin.HandlerFunc
	SendCodeHandler        gin.HandlerFunc
	VerifyCodeHandler      gin.HandlerFunc

	// Authenticated endpoints
	StatusHandler          gin.HandlerFunc
	LoadingHandler         gin.HandlerFunc
	LinkEmailHandler       gin.HandlerFunc
	LinkFederatedHandler   gin.HandlerFunc
	LinkPhoneSendHandler   gin.HandlerFunc
	LinkPhoneVerifyHandler gin.HandlerFunc
	LogoutHandler          gin.HandlerFunc
	GetAccountHandler      gin.HandlerFunc
	AccountStatsHandler    gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires an AuthHandler and AccountHandler into a bundle.
func NewHandlerBundle(sessions middleware.SessionSource, ah *AuthHandler, acc *AccountHandler, health gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		Sessions: sessions,

		LoginHandler:           ah.LoginHandler,
		ExchangeSessionHandler: ah.ExchangeSessionHandler,
		SendCodeHandler:        ah.SendCodeHandler,
		VerifyCodeHandler:      ah.VerifyCodeHandler,

		StatusHandler:          ah.StatusHandler,
		LoadingHandler:         ah.LoadingHandler,
		LinkEmailHandler:       ah.LinkEmailHandler,
		LinkFederatedHandler:   ah.LinkFederatedHandler,
		LinkPhoneSendHandler:   ah.LinkPhoneSendHandler,
		LinkPhoneVerifyHandler: ah.LinkPhoneVerifyHandler,
		LogoutHandler:          ah.LogoutHandler,
		GetAccountHandler:      acc.GetAccountHandler,
		AccountStatsHandler:    acc.GetAccountStatsHandler,

		HealthHandler: health,
	}
}
