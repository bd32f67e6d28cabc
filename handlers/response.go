package handlers

import (
	"net/http"

	"authlink/models"
	"authlink/services/auth"
	"authlink/services/gateway"
	"authlink/utils"

	"github.com/gin-gonic/gin"
)

// sessionView is the client-facing part of a session; backend tokens never leave the server.
type sessionView struct {
	UID         string                  `json:"uid"`
	Email       string                  `json:"email,omitempty"`
	PhoneNumber string                  `json:"phoneNumber,omitempty"`
	Providers   []string                `json:"providers"`
	Presence    models.ProviderPresence `json:"presence"`
	Next        models.NextStep         `json:"next"`
}

func viewOf(sess *models.Session) *sessionView {
	if sess == nil {
		return nil
	}
	presence := auth.Presence(sess)
	return &sessionView{
		UID:         sess.UID,
		Email:       sess.Email,
		PhoneNumber: sess.PhoneNumber,
		Providers:   sess.Providers,
		Presence:    presence,
		Next:        auth.Next(presence),
	}
}

// statusFor picks the HTTP status for a flow result.
func statusFor(res auth.Result) int {
	if res.Type != auth.ResultError {
		return http.StatusOK
	}
	switch res.Kind {
	case auth.KindValidation:
		return http.StatusUnprocessableEntity
	case auth.KindInFlight:
		return http.StatusConflict
	}
	switch res.Code {
	case gateway.CodeInvalidUserToken, gateway.CodeUserTokenExpired, gateway.CodeRequiresRecentLogin:
		return http.StatusUnauthorized
	case gateway.CodeTooManyRequests, gateway.CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case gateway.CodeNetworkRequestFailed, gateway.CodeInternalError:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// writeResult renders a flow result. extra fields are merged in on success only.
func writeResult(c *gin.Context, res auth.Result, extra gin.H) {
	body := gin.H{"type": res.Type}
	if res.Type == auth.ResultError {
		body["kind"] = res.Kind
		body["code"] = res.Code
		body["message"] = res.Message
	}
	notices := res.Notices
	if notices == nil {
		notices = []models.Notice{}
	}
	body["notices"] = notices
	if res.Session != nil {
		body["session"] = viewOf(res.Session)
	}
	if res.Flow != nil {
		body["flowId"] = res.Flow.ID
		body["flowState"] = res.Flow.State
		if res.Flow.VerificationID != "" {
			body["verificationId"] = res.Flow.VerificationID
		}
	}
	if res.OK() {
		for k, v := range extra {
			body[k] = v
		}
	}
	c.JSON(statusFor(res), body)
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
}
