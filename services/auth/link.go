package auth

import (
	"context"

	"authlink/models"
	"authlink/services/gateway"
)

// supportedFederated lists providers that can be linked with an ID token.
var supportedFederated = map[string]bool{
	models.ProviderGoogle: true,
}

// LinkEmail attaches an email and password to the signed-in identity and refreshes it once.
// It does nothing without an authenticated session.
func (s *DefaultAuthService) LinkEmail(ctx context.Context, scope string, entry models.SessionEntry, email, password string) (Result, error) {
	if !entry.Authenticated() {
		return ignored(), nil
	}
	if !ValidEmail(email) {
		return invalid(MsgInvalidEmail), nil
	}
	if !ValidPassword(password) {
		return invalid(MsgShortPassword), nil
	}

	if !s.begin(scope, OpLinkEmail) {
		return inFlight(), nil
	}
	defer s.end(scope, OpLinkEmail)

	linked, err := s.Gateway.LinkCredential(ctx, entry.Session, gateway.EmailCredential(email, password))
	if err != nil {
		return s.failed(string(OpLinkEmail), err), nil
	}
	return succeeded(s.refresh(ctx, linked), nil, MsgEmailLinked), nil
}

// LinkFederated attaches a federated provider, such as Google, using its ID token.
// It shares the link-email loading flag.
func (s *DefaultAuthService) LinkFederated(ctx context.Context, scope string, entry models.SessionEntry, providerID, idToken string) (Result, error) {
	if !entry.Authenticated() {
		return ignored(), nil
	}
	if !supportedFederated[providerID] {
		return invalid(MsgUnsupportedProvider), nil
	}
	if idToken == "" {
		return invalid(MsgMissingIDToken), nil
	}

	if !s.begin(scope, OpLinkEmail) {
		return inFlight(), nil
	}
	defer s.end(scope, OpLinkEmail)

	linked, err := s.Gateway.LinkCredential(ctx, entry.Session, gateway.FederatedCredential(providerID, idToken))
	if err != nil {
		return s.failed("link-federated", err), nil
	}
	return succeeded(s.refresh(ctx, linked), nil, MsgAccountLinked), nil
}
