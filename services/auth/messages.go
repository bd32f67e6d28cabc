package auth

import "authlink/services/gateway"

// Notices raised before any backend call.
const (
	MsgInvalidEmail        = "Enter a valid email"
	MsgShortPassword       = "Password should be at least 6 characters"
	MsgUnsupportedMode     = "Choose whether to log in or sign up"
	MsgResolveChallenge    = "First resolve the Captcha"
	MsgInvalidPhone        = "Enter the Phone Number and provide the country code"
	MsgChallengeExpired    = "Recaptcha Expired, please verify it again"
	MsgOTPThrottled        = "Too many codes requested for this number. Please try again later."
	MsgUnsupportedProvider = "This sign-in provider is not supported"
	MsgMissingIDToken      = "Sign in with the provider first"
	MsgInFlight            = "A request is already in progress"
)

// Notices raised on success.
const (
	MsgCodeSent      = "Verification Code has been sent to your Phone"
	MsgLoggedIn      = "Logged in Successfully!"
	MsgEmailLinked   = "Your email address has been linked successfully!"
	MsgAccountLinked = "Your account has been linked successfully!"
	MsgPhoneLinked   = "Your phone number has been linked successfully!"
)

// MsgGeneric is shown for any code not in the table.
const MsgGeneric = "Something went wrong, please try again"

// FriendlyMessage maps a backend error code to the message shown to the user.
func FriendlyMessage(code string) string {
	switch code {
	case gateway.CodeEmailAlreadyInUse:
		return "This email is already in use. Log in or use a different email."
	case gateway.CodeInvalidEmail:
		return MsgInvalidEmail
	case gateway.CodeWeakPassword:
		return MsgShortPassword
	case gateway.CodeWrongPassword:
		return "Incorrect password. Please try again."
	case gateway.CodeUserNotFound:
		return "No account was found for these details."
	case gateway.CodeInvalidCredential:
		return "Invalid credentials. Please check them and try again."
	case gateway.CodeUserDisabled:
		return "This account has been disabled."
	case gateway.CodeTooManyRequests:
		return "Too many attempts. Please try again later."
	case gateway.CodeOperationNotAllowed:
		return "This sign-in method is not enabled."
	case gateway.CodeRequiresRecentLogin:
		return "Please log in again to continue."
	case gateway.CodeInvalidUserToken, gateway.CodeUserTokenExpired:
		return "Your session has expired. Please log in again."
	case gateway.CodeCredentialAlreadyInUse:
		return "This account is already linked to another user."
	case gateway.CodeProviderAlreadyLinked:
		return "This sign-in method is already linked to your account."
	case gateway.CodeAccountExistsDifferently:
		return "An account already exists with a different sign-in method."
	case gateway.CodeInvalidPhoneNumber:
		return "The phone number is invalid. Include the country code."
	case gateway.CodeMissingPhoneNumber:
		return "Enter a phone number."
	case gateway.CodeQuotaExceeded:
		return "SMS quota exceeded. Please try again later."
	case gateway.CodeCaptchaCheckFailed:
		return "Captcha verification failed. Please try again."
	case gateway.CodeInvalidVerificationCode:
		return "The verification code is invalid."
	case gateway.CodeMissingVerificationCode:
		return "Enter the verification code."
	case gateway.CodeInvalidVerificationID:
		return "This verification has expired. Request a new code."
	case gateway.CodeCodeExpired:
		return "The verification code has expired. Request a new code."
	case gateway.CodeNetworkRequestFailed:
		return "Network error. Check your connection and try again."
	case gateway.CodeAdminUnavailable:
		return "This operation is not available."
	default:
		return MsgGeneric
	}
}
