package handlers

import (
	"net/http"
	"time"

	"authlink/middleware"
	"authlink/models"
	"authlink/services/auth"
	"authlink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves the login, phone and linking flows.
type AuthHandler struct {
	Auth         auth.AuthService
	TokenTTL     time.Duration
	ChallengeTTL time.Duration
}

func NewAuthHandler(svc auth.AuthService, tokenTTL, challengeTTL time.Duration) *AuthHandler {
	return &AuthHandler{Auth: svc, TokenTTL: tokenTTL, ChallengeTTL: challengeTTL}
}

type loginRequest struct {
	Mode     models.LoginMode `json:"mode"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
}

type idTokenRequest struct {
	IDToken string `json:"idToken"`
}

type linkFederatedRequest struct {
	ProviderID string `json:"providerId"`
	IDToken    string `json:"idToken"`
}

// issueToken binds uid to the calling device. It returns false after writing an error.
func (h *AuthHandler) issueToken(c *gin.Context, uid string) (string, bool) {
	token, err := utils.GenerateToken(uid, c.GetString(middleware.DeviceIDKey), h.TokenTTL)
	if err != nil {
		getLogger(c).Error("Failed to sign app token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return "", false
	}
	return token, true
}

func (h *AuthHandler) writeSignedIn(c *gin.Context, res auth.Result) {
	if !res.OK() || res.Session == nil {
		writeResult(c, res, nil)
		return
	}
	token, ok := h.issueToken(c, res.Session.UID)
	if !ok {
		return
	}
	writeResult(c, res, gin.H{"token": token})
}

// LoginHandler signs in, or signs up first when mode is "sign-up".
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	logger := getLogger(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid login request", zap.Error(err))
		badRequest(c, err)
		return
	}
	if req.Mode == "" {
		req.Mode = models.ModeLogin
	}

	res, err := h.Auth.LoginOrSignUp(c.Request.Context(), c.GetString(middleware.DeviceIDKey), req.Mode, req.Email, req.Password)
	if err != nil {
		logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	h.writeSignedIn(c, res)
}

// ExchangeSessionHandler trades a client-side ID token for an app token.
func (h *AuthHandler) ExchangeSessionHandler(c *gin.Context) {
	var req idTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Auth.ExchangeIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		getLogger(c).Error("ID token exchange failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session exchange failed"})
		return
	}
	h.writeSignedIn(c, res)
}

// LinkEmailHandler attaches an email and password to the caller's identity.
func (h *AuthHandler) LinkEmailHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Auth.LinkEmail(c.Request.Context(), c.GetString(middleware.DeviceIDKey), sessionEntry(c), req.Email, req.Password)
	if err != nil {
		getLogger(c).Error("Link email failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Link failed"})
		return
	}
	writeResult(c, res, nil)
}

// LinkFederatedHandler attaches a federated provider such as Google.
func (h *AuthHandler) LinkFederatedHandler(c *gin.Context) {
	var req linkFederatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.ProviderID == "" {
		req.ProviderID = models.ProviderGoogle
	}
	res, err := h.Auth.LinkFederated(c.Request.Context(), c.GetString(middleware.DeviceIDKey), sessionEntry(c), req.ProviderID, req.IDToken)
	if err != nil {
		getLogger(c).Error("Link provider failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Link failed"})
		return
	}
	writeResult(c, res, nil)
}

// LogoutHandler drops the caller's session. The app token stops working with it.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	if err := h.Auth.SignOut(c.Request.Context(), c.GetString(middleware.UserIDKey)); err != nil {
		getLogger(c).Error("Sign out failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign out failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func sessionEntry(c *gin.Context) models.SessionEntry {
	if v, ok := c.Get(middleware.SessionKey); ok {
		if entry, ok := v.(models.SessionEntry); ok {
			return entry
		}
	}
	return models.SessionEntry{State: models.SessionAbsent}
}
