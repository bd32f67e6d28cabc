package models

import "time"

// Provider ids as reported by the identity backend.
const (
	ProviderPassword = "password"
	ProviderPhone    = "phone"
	ProviderGoogle   = "google.com"
	// FederatedPrefix marks provider ids normalised from federated sign-ins.
	FederatedPrefix = "federated:"
)

// Session is the identity backend's view of a signed-in identity.
type Session struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email,omitempty"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	Providers    []string  `json:"providers"`
	IDToken      string    `json:"idToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	RefreshedAt  time.Time `json:"refreshedAt"`
}

// SessionState is the lifecycle state of a cached session.
type SessionState string

const (
	SessionLoading SessionState = "loading"
	SessionAbsent  SessionState = "absent"
	SessionPresent SessionState = "present"
)

// SessionEntry is a read-only snapshot handed out by the session cache.
type SessionEntry struct {
	State   SessionState
	Session *Session
}

// Authenticated reports whether the entry carries a usable session.
func (e SessionEntry) Authenticated() bool {
	return e.State == SessionPresent && e.Session != nil
}
