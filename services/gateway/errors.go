package gateway

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
)

// Client-facing error codes.
const (
	CodeEmailAlreadyInUse        = "auth/email-already-in-use"
	CodeInvalidEmail             = "auth/invalid-email"
	CodeWeakPassword             = "auth/weak-password"
	CodeWrongPassword            = "auth/wrong-password"
	CodeUserNotFound             = "auth/user-not-found"
	CodeInvalidCredential        = "auth/invalid-credential"
	CodeUserDisabled             = "auth/user-disabled"
	CodeTooManyRequests          = "auth/too-many-requests"
	CodeOperationNotAllowed      = "auth/operation-not-allowed"
	CodeRequiresRecentLogin      = "auth/requires-recent-login"
	CodeInvalidUserToken         = "auth/invalid-user-token"
	CodeUserTokenExpired         = "auth/user-token-expired"
	CodeCredentialAlreadyInUse   = "auth/credential-already-in-use"
	CodeProviderAlreadyLinked    = "auth/provider-already-linked"
	CodeInvalidPhoneNumber       = "auth/invalid-phone-number"
	CodeMissingPhoneNumber       = "auth/missing-phone-number"
	CodeQuotaExceeded            = "auth/quota-exceeded"
	CodeCaptchaCheckFailed       = "auth/captcha-check-failed"
	CodeInvalidVerificationCode  = "auth/invalid-verification-code"
	CodeMissingVerificationCode  = "auth/missing-verification-code"
	CodeInvalidVerificationID    = "auth/invalid-verification-id"
	CodeCodeExpired              = "auth/code-expired"
	CodeNetworkRequestFailed     = "auth/network-request-failed"
	CodeInternalError            = "auth/internal-error"
	CodeAdminUnavailable         = "auth/admin-restricted-operation"
	CodeAccountExistsDifferently = "auth/account-exists-with-different-credential"
)

var reasonCodes = map[string]string{
	"EMAIL_EXISTS":                     CodeEmailAlreadyInUse,
	"INVALID_EMAIL":                    CodeInvalidEmail,
	"WEAK_PASSWORD":                    CodeWeakPassword,
	"INVALID_PASSWORD":                 CodeWrongPassword,
	"EMAIL_NOT_FOUND":                  CodeUserNotFound,
	"USER_NOT_FOUND":                   CodeUserNotFound,
	"INVALID_LOGIN_CREDENTIALS":        CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":             CodeInvalidCredential,
	"USER_DISABLED":                    CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":      CodeTooManyRequests,
	"OPERATION_NOT_ALLOWED":            CodeOperationNotAllowed,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN":   CodeRequiresRecentLogin,
	"INVALID_ID_TOKEN":                 CodeInvalidUserToken,
	"INVALID_REFRESH_TOKEN":            CodeInvalidUserToken,
	"MISSING_REFRESH_TOKEN":            CodeInvalidUserToken,
	"TOKEN_EXPIRED":                    CodeUserTokenExpired,
	"FEDERATED_USER_ID_ALREADY_LINKED": CodeCredentialAlreadyInUse,
	"PHONE_NUMBER_EXISTS":              CodeCredentialAlreadyInUse,
	"PROVIDER_ALREADY_LINKED":          CodeProviderAlreadyLinked,
	"INVALID_PHONE_NUMBER":             CodeInvalidPhoneNumber,
	"MISSING_PHONE_NUMBER":             CodeMissingPhoneNumber,
	"QUOTA_EXCEEDED":                   CodeQuotaExceeded,
	"CAPTCHA_CHECK_FAILED":             CodeCaptchaCheckFailed,
	"INVALID_CODE":                     CodeInvalidVerificationCode,
	"MISSING_CODE":                     CodeMissingVerificationCode,
	"INVALID_SESSION_INFO":             CodeInvalidVerificationID,
	"SESSION_EXPIRED":                  CodeCodeExpired,
	"NEED_CONFIRMATION":                CodeAccountExistsDifferently,
	"ADMIN_ONLY_OPERATION":             CodeAdminUnavailable,
}

// Error is a failed identity backend call. Code is the stable client-facing code;
// Reason is the backend's raw reason string, if any.
type Error struct {
	Code   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return "gateway: " + e.Code + " (" + e.Reason + ")"
	}
	if e.Err != nil {
		return "gateway: " + e.Code + ": " + e.Err.Error()
	}
	return "gateway: " + e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the client-facing code from any error returned by a Gateway.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return CodeInternalError
}

// CodeForReason translates a backend reason string such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func CodeForReason(reason string) string {
	if code, ok := reasonCodes[normalizeReason(reason)]; ok {
		return code
	}
	return CodeInternalError
}

func normalizeReason(reason string) string {
	if i := strings.Index(reason, ":"); i >= 0 {
		reason = reason[:i]
	}
	return strings.TrimSpace(reason)
}

// translate maps a transport error from the REST client onto an *Error.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return err
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		reason := normalizeReason(apiErr.Message)
		return &Error{Code: CodeForReason(reason), Reason: reason, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeNetworkRequestFailed, Err: err}
	}
	return &Error{Code: CodeNetworkRequestFailed, Err: err}
}
