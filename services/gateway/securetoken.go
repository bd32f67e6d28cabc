package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

const secureTokenEndpoint = "https://securetoken.googleapis.com/v1/token"

// TokenGrant is a renewed ID token.
type TokenGrant struct {
	IDToken      string
	RefreshToken string
	UID          string
	ExpiresIn    time.Duration
}

// TokenRenewer exchanges a refresh token for a fresh ID token.
type TokenRenewer interface {
	Renew(ctx context.Context, refreshToken string) (*TokenGrant, error)
}

// SecureToken implements TokenRenewer on the securetoken refresh_token grant.
type SecureToken struct {
	client   *http.Client
	endpoint string
}

// NewSecureToken builds a renewer from the same client options as the Identity Toolkit
// service, typically option.WithAPIKey.
func NewSecureToken(ctx context.Context, opts ...option.ClientOption) (*SecureToken, error) {
	client, endpoint, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gateway: securetoken client: %w", err)
	}
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = secureTokenEndpoint
	}
	return &SecureToken{client: client, endpoint: endpoint}, nil
}

type secureTokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
	Error        *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *SecureToken) Renew(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	if refreshToken == "" {
		return nil, &Error{Code: CodeInvalidUserToken, Reason: "MISSING_REFRESH_TOKEN"}
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, translate(err)
	}
	defer resp.Body.Close()

	var body secureTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Code: CodeNetworkRequestFailed, Err: err}
	}
	if body.Error != nil || resp.StatusCode != http.StatusOK {
		reason := ""
		if body.Error != nil {
			reason = normalizeReason(body.Error.Message)
		}
		return nil, &Error{Code: CodeForReason(reason), Reason: reason}
	}
	if body.IDToken == "" {
		return nil, &Error{Code: CodeInternalError, Reason: "EMPTY_ID_TOKEN"}
	}

	secs, _ := strconv.ParseInt(body.ExpiresIn, 10, 64)
	return &TokenGrant{
		IDToken:      body.IDToken,
		RefreshToken: body.RefreshToken,
		UID:          body.UserID,
		ExpiresIn:    time.Duration(secs) * time.Second,
	}, nil
}
