package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"authlink/models"
	"authlink/services/session"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/identitytoolkit/v3"
)

// AdminClient is the subset of the Firebase Admin auth client the gateway uses.
// *auth.Client satisfies it.
type AdminClient interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// IdentityToolkit implements Gateway on the Firebase Identity Toolkit REST API.
type IdentityToolkit struct {
	rp         *identitytoolkit.RelyingpartyService
	admin      AdminClient
	tokens     TokenRenewer
	cache      *session.Cache
	requestURI string
	logger     *zap.Logger
	now        func() time.Time
}

// renewSkew is how close to expiry an ID token may get before a call that sends it renews it.
const renewSkew = 5 * time.Minute

// NewIdentityToolkit wires the REST client, the optional admin client, the token renewer
// and the session cache. requestURI is the continue URI sent with federated assertions.
// The gateway installs itself as the cache's renewer.
func NewIdentityToolkit(svc *identitytoolkit.Service, admin AdminClient, tokens TokenRenewer, cache *session.Cache, requestURI string, logger *zap.Logger) *IdentityToolkit {
	if logger == nil {
		logger = zap.NewNop()
	}
	if requestURI == "" {
		requestURI = "http://localhost"
	}
	g := &IdentityToolkit{
		rp:         svc.Relyingparty,
		admin:      admin,
		tokens:     tokens,
		cache:      cache,
		requestURI: requestURI,
		logger:     logger,
		now:        time.Now,
	}
	cache.SetRenewer(g.renew)
	return g
}

func (g *IdentityToolkit) expiry(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	return g.now().Add(time.Duration(expiresIn) * time.Second)
}

// CreateAccount registers an email+password identity. The returned session is not published;
// callers sign in afterwards.
func (g *IdentityToolkit) CreateAccount(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := g.rp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translate(err)
	}
	g.logger.Info("gateway: account created", zap.String("uid", resp.LocalId))
	return &models.Session{
		UID:          resp.LocalId,
		Email:        resp.Email,
		Providers:    []string{models.ProviderPassword},
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    g.expiry(resp.ExpiresIn),
	}, nil
}

func (g *IdentityToolkit) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := g.rp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translate(err)
	}
	sess := &models.Session{
		UID:          resp.LocalId,
		Email:        resp.Email,
		Providers:    []string{models.ProviderPassword},
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    g.expiry(resp.ExpiresIn),
	}
	// The sign-in response carries no provider list.
	return g.Refresh(ctx, sess)
}

// renew exchanges the session's refresh token for a new ID token. It does not publish.
func (g *IdentityToolkit) renew(ctx context.Context, sess *models.Session) (*models.Session, error) {
	if g.tokens == nil {
		return nil, &Error{Code: CodeUserTokenExpired, Reason: "NO_TOKEN_RENEWER"}
	}
	grant, err := g.tokens.Renew(ctx, sess.RefreshToken)
	if err != nil {
		return nil, err
	}
	if grant.UID != "" && grant.UID != sess.UID {
		return nil, &Error{Code: CodeInvalidUserToken, Reason: "USER_MISMATCH"}
	}
	renewed := clone(sess)
	renewed.IDToken = grant.IDToken
	if grant.RefreshToken != "" {
		renewed.RefreshToken = grant.RefreshToken
	}
	renewed.ExpiresAt = g.expiry(int64(grant.ExpiresIn / time.Second))
	g.logger.Debug("gateway: id token renewed", zap.String("uid", sess.UID))
	return renewed, nil
}

// ensureFresh renews and republishes sess when its ID token is about to expire.
func (g *IdentityToolkit) ensureFresh(ctx context.Context, sess *models.Session) (*models.Session, error) {
	if g.tokens == nil || sess.ExpiresAt.IsZero() || g.now().Add(renewSkew).Before(sess.ExpiresAt) {
		return sess, nil
	}
	renewed, err := g.renew(ctx, sess)
	if err != nil {
		return nil, err
	}
	g.cache.Publish(ctx, renewed)
	return renewed, nil
}

func (g *IdentityToolkit) LinkCredential(ctx context.Context, sess *models.Session, cred Credential) (*models.Session, error) {
	if sess == nil || sess.IDToken == "" {
		return nil, &Error{Code: CodeInvalidUserToken}
	}
	sess, err := g.ensureFresh(ctx, sess)
	if err != nil {
		return nil, err
	}

	switch cred.Kind {
	case CredentialPassword:
		resp, err := g.rp.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
			IdToken:           sess.IDToken,
			Email:             cred.Email,
			Password:          cred.Password,
			ReturnSecureToken: true,
		}).Context(ctx).Do()
		if err != nil {
			return nil, translate(err)
		}
		linked := clone(sess)
		linked.Email = resp.Email
		if resp.IdToken != "" {
			linked.IDToken = resp.IdToken
			linked.RefreshToken = resp.RefreshToken
			linked.ExpiresAt = g.expiry(resp.ExpiresIn)
		}
		providers := make([]string, 0, len(resp.ProviderUserInfo))
		for _, p := range resp.ProviderUserInfo {
			providers = append(providers, p.ProviderId)
		}
		linked.Providers = mergeProviders(linked.Providers, providers, models.ProviderPassword)
		g.cache.Publish(ctx, linked)
		return linked, nil

	case CredentialFederated:
		body := url.Values{}
		body.Set("id_token", cred.IDToken)
		body.Set("providerId", cred.ProviderID)
		resp, err := g.rp.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
			IdToken:           sess.IDToken,
			PostBody:          body.Encode(),
			RequestUri:        g.requestURI,
			ReturnSecureToken: true,
		}).Context(ctx).Do()
		if err != nil {
			return nil, translate(err)
		}
		if resp.ErrorMessage != "" {
			reason := normalizeReason(resp.ErrorMessage)
			return nil, &Error{Code: CodeForReason(reason), Reason: reason}
		}
		if resp.NeedConfirmation {
			return nil, &Error{Code: CodeAccountExistsDifferently, Reason: "NEED_CONFIRMATION"}
		}
		linked := clone(sess)
		if resp.IdToken != "" {
			linked.IDToken = resp.IdToken
			linked.RefreshToken = resp.RefreshToken
			linked.ExpiresAt = g.expiry(resp.ExpiresIn)
		}
		if linked.Email == "" {
			linked.Email = resp.Email
		}
		linked.Providers = mergeProviders(linked.Providers, nil, cred.ProviderID)
		g.cache.Publish(ctx, linked)
		return linked, nil
	}
	return nil, fmt.Errorf("gateway: unsupported credential kind %q", cred.Kind)
}

// RequestOTP asks the backend to text a code. Binding to an existing identity happens when
// the code is redeemed, so the request itself is the same for both targets.
func (g *IdentityToolkit) RequestOTP(ctx context.Context, target OTPTarget, phoneNumber, challengeToken string) (string, error) {
	resp, err := g.rp.SendVerificationCode(&identitytoolkit.IdentitytoolkitRelyingpartySendVerificationCodeRequest{
		PhoneNumber:    phoneNumber,
		RecaptchaToken: challengeToken,
	}).Context(ctx).Do()
	if err != nil {
		return "", translate(err)
	}
	if resp.SessionInfo == "" {
		return "", &Error{Code: CodeInternalError, Reason: "EMPTY_SESSION_INFO"}
	}
	g.logger.Debug("gateway: verification code sent", zap.Bool("anonymous", target.Anonymous()))
	return resp.SessionInfo, nil
}

func (g *IdentityToolkit) VerifyOTP(ctx context.Context, verificationID, code string) (*models.Session, error) {
	resp, err := g.rp.VerifyPhoneNumber(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPhoneNumberRequest{
		SessionInfo: verificationID,
		Code:        code,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translate(err)
	}
	sess := &models.Session{
		UID:          resp.LocalId,
		PhoneNumber:  resp.PhoneNumber,
		Providers:    []string{models.ProviderPhone},
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    g.expiry(resp.ExpiresIn),
	}
	g.cache.Publish(ctx, sess)
	return sess, nil
}

func (g *IdentityToolkit) UpdateIdentity(ctx context.Context, sess *models.Session, verificationID, code string) (*models.Session, error) {
	if sess == nil || sess.IDToken == "" {
		return nil, &Error{Code: CodeInvalidUserToken}
	}
	sess, err := g.ensureFresh(ctx, sess)
	if err != nil {
		return nil, err
	}
	resp, err := g.rp.VerifyPhoneNumber(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPhoneNumberRequest{
		IdToken:     sess.IDToken,
		SessionInfo: verificationID,
		Code:        code,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translate(err)
	}
	updated := clone(sess)
	updated.PhoneNumber = resp.PhoneNumber
	if resp.IdToken != "" {
		updated.IDToken = resp.IdToken
		updated.RefreshToken = resp.RefreshToken
		updated.ExpiresAt = g.expiry(resp.ExpiresIn)
	}
	updated.Providers = mergeProviders(updated.Providers, nil, models.ProviderPhone)
	g.cache.Publish(ctx, updated)
	return updated, nil
}

func (g *IdentityToolkit) CurrentSession(ctx context.Context, uid string) models.SessionEntry {
	return g.cache.Get(ctx, uid)
}

// Refresh re-reads the identity's linked providers and republishes the session.
func (g *IdentityToolkit) Refresh(ctx context.Context, sess *models.Session) (*models.Session, error) {
	if sess == nil || sess.UID == "" {
		return nil, &Error{Code: CodeInvalidUserToken}
	}
	refreshed := clone(sess)

	if g.admin != nil {
		rec, err := g.admin.GetUser(ctx, sess.UID)
		if err != nil {
			if auth.IsUserNotFound(err) {
				return nil, &Error{Code: CodeUserNotFound, Err: err}
			}
			return nil, &Error{Code: CodeNetworkRequestFailed, Err: err}
		}
		if rec.UserInfo != nil {
			refreshed.Email = rec.Email
			refreshed.PhoneNumber = rec.PhoneNumber
		}
		refreshed.Providers = refreshed.Providers[:0]
		for _, p := range rec.ProviderUserInfo {
			refreshed.Providers = append(refreshed.Providers, p.ProviderID)
		}
	} else {
		fresh, err := g.ensureFresh(ctx, refreshed)
		if err != nil {
			return nil, err
		}
		refreshed = clone(fresh)
		resp, err := g.rp.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
			IdToken: refreshed.IDToken,
		}).Context(ctx).Do()
		if err != nil {
			return nil, translate(err)
		}
		if len(resp.Users) == 0 {
			return nil, &Error{Code: CodeUserNotFound}
		}
		user := resp.Users[0]
		refreshed.Email = user.Email
		refreshed.PhoneNumber = user.PhoneNumber
		refreshed.Providers = refreshed.Providers[:0]
		for _, p := range user.ProviderUserInfo {
			refreshed.Providers = append(refreshed.Providers, p.ProviderId)
		}
	}

	refreshed.RefreshedAt = g.now()
	g.cache.Publish(ctx, refreshed)
	return refreshed, nil
}

func (g *IdentityToolkit) ExchangeIDToken(ctx context.Context, idToken string) (*models.Session, error) {
	if g.admin == nil {
		return nil, &Error{Code: CodeAdminUnavailable, Err: errors.New("admin client not configured")}
	}
	token, err := g.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, &Error{Code: CodeInvalidUserToken, Err: err}
	}
	sess := &models.Session{
		UID:       token.UID,
		IDToken:   idToken,
		ExpiresAt: time.Unix(token.Expires, 0),
	}
	return g.Refresh(ctx, sess)
}

func (g *IdentityToolkit) SignOut(ctx context.Context, uid string) error {
	g.cache.Evict(ctx, uid)
	return nil
}

func clone(sess *models.Session) *models.Session {
	cp := *sess
	cp.Providers = append([]string(nil), sess.Providers...)
	return &cp
}

func mergeProviders(current, reported []string, ensure string) []string {
	seen := make(map[string]bool, len(current)+len(reported)+1)
	out := make([]string, 0, len(current)+len(reported)+1)
	for _, list := range [][]string{current, reported, {ensure}} {
		for _, p := range list {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
