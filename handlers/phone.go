package handlers

import (
	"net/http"
	"time"

	"authlink/middleware"
	"authlink/models"
	"authlink/services/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sendCodeRequest struct {
	FlowID         string `json:"flowId"`
	PhoneNumber    string `json:"phoneNumber"`
	RecaptchaToken string `json:"recaptchaToken"`

	// ResolvedAt is when the client solved the challenge, in Unix milliseconds.
	// Without it the challenge counts as unresolved.
	ResolvedAt int64 `json:"resolvedAt"`
}

// maxClockSkew bounds how far in the future a client may stamp its challenge.
const maxClockSkew = 30 * time.Second

type verifyCodeRequest struct {
	FlowID         string `json:"flowId"`
	VerificationID string `json:"verificationId"`
	Code           string `json:"code"`
}

// challenge wraps the submitted token in a widget. Expiry notices are appended to notices.
func (h *AuthHandler) challenge(req sendCodeRequest, notices *[]models.Notice) *auth.Widget {
	w := auth.NewWidget(h.ChallengeTTL, func() {
		*notices = append(*notices, models.Notice{Type: models.NoticeInfo, Message: auth.MsgChallengeExpired})
	})
	w.Render()
	if req.ResolvedAt <= 0 {
		return w
	}
	at := time.UnixMilli(req.ResolvedAt)
	if at.After(time.Now().Add(maxClockSkew)) {
		return w
	}
	w.Resolve(req.RecaptchaToken, at)
	return w
}

func (h *AuthHandler) phoneRequest(c *gin.Context) (auth.PhoneRequest, *[]models.Notice, bool) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return auth.PhoneRequest{}, nil, false
	}
	notices := &[]models.Notice{}
	return auth.PhoneRequest{
		FlowID:      req.FlowID,
		PhoneNumber: req.PhoneNumber,
		Challenge:   h.challenge(req, notices),
	}, notices, true
}

func verifyRequest(c *gin.Context) (auth.VerifyRequest, bool) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return auth.VerifyRequest{}, false
	}
	return auth.VerifyRequest{FlowID: req.FlowID, VerificationID: req.VerificationID, Code: req.Code}, true
}

// SendCodeHandler starts a phone sign-in.
func (h *AuthHandler) SendCodeHandler(c *gin.Context) {
	req, notices, ok := h.phoneRequest(c)
	if !ok {
		return
	}
	res, err := h.Auth.SendCode(c.Request.Context(), c.GetString(middleware.DeviceIDKey), req)
	if err != nil {
		getLogger(c).Error("Send code failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		return
	}
	res.Notices = append(*notices, res.Notices...)
	writeResult(c, res, nil)
}

// VerifyCodeHandler completes a phone sign-in and issues an app token.
func (h *AuthHandler) VerifyCodeHandler(c *gin.Context) {
	req, ok := verifyRequest(c)
	if !ok {
		return
	}
	res, err := h.Auth.VerifyCode(c.Request.Context(), c.GetString(middleware.DeviceIDKey), req)
	if err != nil {
		getLogger(c).Error("Verify code failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		return
	}
	h.writeSignedIn(c, res)
}

// LinkPhoneSendHandler sends a code to a number being linked to the caller.
func (h *AuthHandler) LinkPhoneSendHandler(c *gin.Context) {
	req, notices, ok := h.phoneRequest(c)
	if !ok {
		return
	}
	res, err := h.Auth.LinkPhone(c.Request.Context(), c.GetString(middleware.DeviceIDKey), sessionEntry(c), req)
	if err != nil {
		getLogger(c).Error("Link phone send failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		return
	}
	res.Notices = append(*notices, res.Notices...)
	writeResult(c, res, nil)
}

// LinkPhoneVerifyHandler attaches the verified number to the caller.
func (h *AuthHandler) LinkPhoneVerifyHandler(c *gin.Context) {
	req, ok := verifyRequest(c)
	if !ok {
		return
	}
	res, err := h.Auth.VerifyLinkPhone(c.Request.Context(), c.GetString(middleware.DeviceIDKey), sessionEntry(c), req)
	if err != nil {
		getLogger(c).Error("Link phone verify failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		return
	}
	writeResult(c, res, nil)
}
