package gateway

import (
	"context"

	"authlink/models"
)

// Gateway is the identity backend as seen by the auth flows. It is the only
// component that writes to the session cache.
type Gateway interface {
	CreateAccount(ctx context.Context, email, password string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	LinkCredential(ctx context.Context, sess *models.Session, cred Credential) (*models.Session, error)

	// RequestOTP sends a code to phoneNumber and returns the verification id.
	RequestOTP(ctx context.Context, target OTPTarget, phoneNumber, challengeToken string) (string, error)
	// VerifyOTP exchanges a code for a new session.
	VerifyOTP(ctx context.Context, verificationID, code string) (*models.Session, error)
	// UpdateIdentity attaches the verified phone number to an existing session.
	UpdateIdentity(ctx context.Context, sess *models.Session, verificationID, code string) (*models.Session, error)

	CurrentSession(ctx context.Context, uid string) models.SessionEntry
	Refresh(ctx context.Context, sess *models.Session) (*models.Session, error)

	// ExchangeIDToken turns a client-side ID token into a server session.
	ExchangeIDToken(ctx context.Context, idToken string) (*models.Session, error)
	SignOut(ctx context.Context, uid string) error
}

// CredentialKind distinguishes what LinkCredential attaches.
type CredentialKind string

const (
	CredentialPassword  CredentialKind = "password"
	CredentialFederated CredentialKind = "federated"
)

// Credential is a sign-in method to attach to an identity.
type Credential struct {
	Kind       CredentialKind
	Email      string
	Password   string
	ProviderID string
	IDToken    string
}

// EmailCredential builds an email+password credential.
func EmailCredential(email, password string) Credential {
	return Credential{Kind: CredentialPassword, Email: email, Password: password}
}

// FederatedCredential builds a credential from a federated provider's ID token.
func FederatedCredential(providerID, idToken string) Credential {
	return Credential{Kind: CredentialFederated, ProviderID: providerID, IDToken: idToken}
}

// OTPTarget says who the requested code is for. The zero value is a pre-auth request.
type OTPTarget struct {
	Session *models.Session
}

// Anonymous reports whether the code is requested without a signed-in identity.
func (t OTPTarget) Anonymous() bool {
	return t.Session == nil
}
