package models

// AuthStatusType is the derived authentication status.
type AuthStatusType string

const (
	AuthLoading         AuthStatusType = "loading"
	AuthUnauthenticated AuthStatusType = "unauthenticated"
	AuthAuthenticated   AuthStatusType = "authenticated"
)

// AuthStatus is recomputed from the session cache on every read.
type AuthStatus struct {
	Type     AuthStatusType `json:"type"`
	Identity string         `json:"identity,omitempty"`
}

// ProviderPresence reports which sign-in methods are linked to a session.
type ProviderPresence struct {
	EmailLinked bool `json:"emailLinked"`
	PhoneLinked bool `json:"phoneLinked"`
}

// NextStep names the page a client should show for a given ProviderPresence.
type NextStep string

const (
	StepNone      NextStep = "none"
	StepLinkPhone NextStep = "link-phone"
	StepLinkEmail NextStep = "link-email"
	StepComplete  NextStep = "complete"
)

// LoginMode selects between signing in and creating an account first.
type LoginMode string

const (
	ModeLogin  LoginMode = "login"
	ModeSignUp LoginMode = "sign-up"
)

// NoticeType mirrors the toast levels a client renders.
type NoticeType string

const (
	NoticeInfo    NoticeType = "info"
	NoticeSuccess NoticeType = "success"
	NoticeError   NoticeType = "error"
)

// Notice is a transient, user-facing message.
type Notice struct {
	Type    NoticeType `json:"type"`
	Message string     `json:"message"`
}
