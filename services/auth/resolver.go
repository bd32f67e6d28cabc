package auth

import (
	"strings"

	"authlink/models"
)

// Resolve derives the authentication status from a session cache entry.
func Resolve(entry models.SessionEntry) models.AuthStatus {
	switch {
	case entry.State == models.SessionLoading:
		return models.AuthStatus{Type: models.AuthLoading}
	case entry.Authenticated():
		return models.AuthStatus{Type: models.AuthAuthenticated, Identity: entry.Session.UID}
	default:
		return models.AuthStatus{Type: models.AuthUnauthenticated}
	}
}

// Presence reports which sign-in methods are linked to sess. A nil session has none.
func Presence(sess *models.Session) models.ProviderPresence {
	var p models.ProviderPresence
	if sess == nil {
		return p
	}
	for _, id := range sess.Providers {
		switch {
		case id == models.ProviderPhone:
			p.PhoneLinked = true
		case id == models.ProviderPassword, isFederated(id):
			p.EmailLinked = true
		}
	}
	return p
}

// Federated provider ids are domain-like ("google.com", "oidc.acme") or carry the federated prefix.
func isFederated(id string) bool {
	return strings.HasPrefix(id, models.FederatedPrefix) || strings.Contains(id, ".")
}

// Next picks the page to show after a status read.
func Next(p models.ProviderPresence) models.NextStep {
	switch {
	case p.EmailLinked && p.PhoneLinked:
		return models.StepComplete
	case p.EmailLinked:
		return models.StepLinkPhone
	case p.PhoneLinked:
		return models.StepLinkEmail
	default:
		return models.StepNone
	}
}
