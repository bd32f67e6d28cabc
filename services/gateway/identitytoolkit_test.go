package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"authlink/models"
	"authlink/services/session"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// fakeToolkit serves canned relyingparty responses keyed by method name.
type fakeToolkit struct {
	mu        sync.Mutex
	responses map[string]any
	failures  map[string]string
	requests  map[string][]map[string]any
}

func newFakeToolkit() *fakeToolkit {
	return &fakeToolkit{
		responses: make(map[string]any),
		failures:  make(map[string]string),
		requests:  make(map[string][]map[string]any),
	}
}

func (f *fakeToolkit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests[method] = append(f.requests[method], body)
	reason, failing := f.failures[method]
	resp := f.responses[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": reason},
		})
		return
	}
	if resp == nil {
		resp = map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeToolkit) calls(method string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method]
}

type fakeAdmin struct {
	users map[string]*auth.UserRecord
	uid   string
}

func (a *fakeAdmin) GetUser(_ context.Context, uid string) (*auth.UserRecord, error) {
	rec, ok := a.users[uid]
	if !ok {
		return nil, assert.AnError
	}
	return rec, nil
}

func (a *fakeAdmin) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != "good-token" {
		return nil, assert.AnError
	}
	return &auth.Token{UID: a.uid, Expires: 2000000000}, nil
}

func newTestGateway(t *testing.T, admin AdminClient) (*IdentityToolkit, *fakeToolkit, *session.Cache) {
	t.Helper()
	fake := newFakeToolkit()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := identitytoolkit.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	cache := session.NewCache(nil, nil)
	return NewIdentityToolkit(svc, admin, nil, cache, "", nil), fake, cache
}

func TestSignInRefreshesAndPublishes(t *testing.T) {
	g, fake, cache := newTestGateway(t, nil)
	fake.responses["verifyPassword"] = map[string]any{
		"localId": "u1", "email": "a@b.com", "idToken": "id-1", "refreshToken": "r-1", "expiresIn": "3600",
	}
	fake.responses["getAccountInfo"] = map[string]any{
		"users": []map[string]any{{
			"localId": "u1", "email": "a@b.com", "phoneNumber": "+15555550100",
			"providerUserInfo": []map[string]any{{"providerId": "password"}, {"providerId": "phone"}},
		}},
	}

	sess, err := g.SignIn(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UID)
	assert.Equal(t, []string{"password", "phone"}, sess.Providers)
	assert.Equal(t, "+15555550100", sess.PhoneNumber)
	assert.False(t, sess.RefreshedAt.IsZero())

	reqs := fake.calls("verifyPassword")
	require.Len(t, reqs, 1)
	assert.Equal(t, "a@b.com", reqs[0]["email"])
	assert.Equal(t, true, reqs[0]["returnSecureToken"])
	assert.Equal(t, "id-1", fake.calls("getAccountInfo")[0]["idToken"])

	entry := cache.Peek("u1")
	require.True(t, entry.Authenticated())
	assert.Equal(t, []string{"password", "phone"}, entry.Session.Providers)
}

func TestCreateAccountMapsBackendError(t *testing.T) {
	g, fake, cache := newTestGateway(t, nil)
	fake.failures["signupNewUser"] = "EMAIL_EXISTS"

	_, err := g.CreateAccount(context.Background(), "a@b.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, CodeEmailAlreadyInUse, CodeOf(err))
	assert.Equal(t, models.SessionAbsent, cache.Peek("a@b.com").State)
}

func TestRequestOTPAndVerify(t *testing.T) {
	g, fake, cache := newTestGateway(t, nil)
	fake.responses["sendVerificationCode"] = map[string]any{"sessionInfo": "vid-1"}
	fake.responses["verifyPhoneNumber"] = map[string]any{
		"localId": "u2", "idToken": "id-2", "phoneNumber": "+15555550100", "expiresIn": "3600",
	}

	vid, err := g.RequestOTP(context.Background(), OTPTarget{}, "+15555550100", "captcha")
	require.NoError(t, err)
	assert.Equal(t, "vid-1", vid)
	assert.Equal(t, "captcha", fake.calls("sendVerificationCode")[0]["recaptchaToken"])

	sess, err := g.VerifyOTP(context.Background(), vid, "123456")
	require.NoError(t, err)
	assert.Equal(t, "u2", sess.UID)
	assert.Equal(t, []string{"phone"}, sess.Providers)
	assert.True(t, cache.Peek("u2").Authenticated())

	req := fake.calls("verifyPhoneNumber")[0]
	assert.Equal(t, "vid-1", req["sessionInfo"])
	assert.Equal(t, "123456", req["code"])
	_, hasIDToken := req["idToken"]
	assert.False(t, hasIDToken)
}

func TestVerifyOTPInvalidCode(t *testing.T) {
	g, fake, _ := newTestGateway(t, nil)
	fake.failures["verifyPhoneNumber"] = "INVALID_CODE"

	_, err := g.VerifyOTP(context.Background(), "vid", "000000")
	assert.Equal(t, CodeInvalidVerificationCode, CodeOf(err))
}

func TestUpdateIdentitySendsIDToken(t *testing.T) {
	g, fake, cache := newTestGateway(t, nil)
	fake.responses["verifyPhoneNumber"] = map[string]any{"localId": "u3", "phoneNumber": "+15555550101"}

	sess := &models.Session{UID: "u3", IDToken: "id-3", Providers: []string{"password"}}
	updated, err := g.UpdateIdentity(context.Background(), sess, "vid-3", "654321")
	require.NoError(t, err)
	assert.Equal(t, []string{"password", "phone"}, updated.Providers)
	assert.Equal(t, "id-3", updated.IDToken)
	assert.Equal(t, "id-3", fake.calls("verifyPhoneNumber")[0]["idToken"])
	assert.Equal(t, []string{"password"}, sess.Providers)
	assert.True(t, cache.Peek("u3").Authenticated())
}

func TestLinkEmailCredential(t *testing.T) {
	g, fake, _ := newTestGateway(t, nil)
	fake.responses["setAccountInfo"] = map[string]any{
		"localId": "u4", "email": "c@d.com", "idToken": "id-4b",
		"providerUserInfo": []map[string]any{{"providerId": "phone"}, {"providerId": "password"}},
	}

	sess := &models.Session{UID: "u4", IDToken: "id-4", Providers: []string{"phone"}}
	linked, err := g.LinkCredential(context.Background(), sess, EmailCredential("c@d.com", "secret1"))
	require.NoError(t, err)
	assert.Equal(t, "c@d.com", linked.Email)
	assert.Equal(t, "id-4b", linked.IDToken)
	assert.ElementsMatch(t, []string{"phone", "password"}, linked.Providers)

	req := fake.calls("setAccountInfo")[0]
	assert.Equal(t, "id-4", req["idToken"])
	assert.Equal(t, "secret1", req["password"])
}

func TestLinkEmailAlreadyInUse(t *testing.T) {
	g, fake, _ := newTestGateway(t, nil)
	fake.failures["setAccountInfo"] = "EMAIL_EXISTS"

	sess := &models.Session{UID: "u4", IDToken: "id-4"}
	_, err := g.LinkCredential(context.Background(), sess, EmailCredential("c@d.com", "secret1"))
	assert.Equal(t, CodeEmailAlreadyInUse, CodeOf(err))
}

func TestLinkFederatedErrorMessageInBody(t *testing.T) {
	g, fake, _ := newTestGateway(t, nil)
	fake.responses["verifyAssertion"] = map[string]any{"errorMessage": "FEDERATED_USER_ID_ALREADY_LINKED"}

	sess := &models.Session{UID: "u5", IDToken: "id-5"}
	_, err := g.LinkCredential(context.Background(), sess, FederatedCredential(models.ProviderGoogle, "google-id"))
	assert.Equal(t, CodeCredentialAlreadyInUse, CodeOf(err))

	req := fake.calls("verifyAssertion")[0]
	assert.Contains(t, req["postBody"], "providerId=google.com")
	assert.Equal(t, "http://localhost", req["requestUri"])
}

func TestLinkFederatedSuccess(t *testing.T) {
	g, fake, _ := newTestGateway(t, nil)
	fake.responses["verifyAssertion"] = map[string]any{"localId": "u5", "email": "g@gmail.com", "idToken": "id-5b"}

	sess := &models.Session{UID: "u5", IDToken: "id-5", Providers: []string{"phone"}}
	linked, err := g.LinkCredential(context.Background(), sess, FederatedCredential(models.ProviderGoogle, "google-id"))
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "google.com"}, linked.Providers)
	assert.Equal(t, "g@gmail.com", linked.Email)
}

func TestLinkRequiresIDToken(t *testing.T) {
	g, _, _ := newTestGateway(t, nil)
	_, err := g.LinkCredential(context.Background(), &models.Session{UID: "u"}, EmailCredential("a@b.com", "secret1"))
	assert.Equal(t, CodeInvalidUserToken, CodeOf(err))
}

func TestRefreshUsesAdminWhenConfigured(t *testing.T) {
	admin := &fakeAdmin{users: map[string]*auth.UserRecord{
		"u6": {
			UserInfo: &auth.UserInfo{UID: "u6", Email: "e@f.com"},
			ProviderUserInfo: []*auth.UserInfo{
				{ProviderID: "google.com"},
				{ProviderID: "phone"},
			},
		},
	}}
	g, fake, cache := newTestGateway(t, admin)

	sess, err := g.Refresh(context.Background(), &models.Session{UID: "u6", IDToken: "id-6"})
	require.NoError(t, err)
	assert.Equal(t, []string{"google.com", "phone"}, sess.Providers)
	assert.Equal(t, "e@f.com", sess.Email)
	assert.Empty(t, fake.calls("getAccountInfo"))
	assert.True(t, cache.Peek("u6").Authenticated())
}

func TestExchangeIDToken(t *testing.T) {
	admin := &fakeAdmin{uid: "u7", users: map[string]*auth.UserRecord{
		"u7": {UserInfo: &auth.UserInfo{UID: "u7"}, ProviderUserInfo: []*auth.UserInfo{{ProviderID: "google.com"}}},
	}}
	g, _, _ := newTestGateway(t, admin)

	sess, err := g.ExchangeIDToken(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "u7", sess.UID)
	assert.Equal(t, "good-token", sess.IDToken)

	_, err = g.ExchangeIDToken(context.Background(), "bad-token")
	assert.Equal(t, CodeInvalidUserToken, CodeOf(err))
}

func TestExchangeIDTokenWithoutAdmin(t *testing.T) {
	g, _, _ := newTestGateway(t, nil)
	_, err := g.ExchangeIDToken(context.Background(), "good-token")
	assert.Equal(t, CodeAdminUnavailable, CodeOf(err))
}

func TestSignOutEvicts(t *testing.T) {
	g, _, cache := newTestGateway(t, nil)
	cache.Publish(context.Background(), &models.Session{UID: "u8"})

	require.NoError(t, g.SignOut(context.Background(), "u8"))
	assert.Equal(t, models.SessionAbsent, g.CurrentSession(context.Background(), "u8").State)
}

type fakeRenewer struct {
	mu     sync.Mutex
	seen   []string
	grant  *TokenGrant
	failed error
}

func (r *fakeRenewer) Renew(_ context.Context, refreshToken string) (*TokenGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, refreshToken)
	if r.failed != nil {
		return nil, r.failed
	}
	return r.grant, nil
}

func TestLinkRenewsTokenNearExpiry(t *testing.T) {
	g, fake, cache := newTestGateway(t, nil)
	renewer := &fakeRenewer{grant: &TokenGrant{IDToken: "id-new", RefreshToken: "r-new", UID: "u4", ExpiresIn: time.Hour}}
	g.tokens = renewer
	fake.responses["setAccountInfo"] = map[string]any{"localId": "u4", "email": "c@d.com"}

	sess := &models.Session{
		UID: "u4", IDToken: "id-old", RefreshToken: "r-old",
		Providers: []string{"phone"}, ExpiresAt: time.Now().Add(time.Minute),
	}
	linked, err := g.LinkCredential(context.Background(), sess, EmailCredential("c@d.com", "secret1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"r-old"}, renewer.seen)
	assert.Equal(t, "id-new", fake.calls("setAccountInfo")[0]["idToken"])
	assert.Equal(t, "id-new", linked.IDToken)
	assert.Equal(t, "r-new", linked.RefreshToken)
	assert.True(t, linked.ExpiresAt.After(time.Now().Add(50*time.Minute)))
	assert.Equal(t, "id-new", cache.Peek("u4").Session.IDToken)
}

func TestUpdateIdentityKeepsFreshToken(t *testing.T) {
	g, fake, _ := newTestGateway(t, nil)
	renewer := &fakeRenewer{grant: &TokenGrant{IDToken: "id-new", UID: "u3"}}
	g.tokens = renewer
	fake.responses["verifyPhoneNumber"] = map[string]any{"localId": "u3", "phoneNumber": "+15555550101"}

	sess := &models.Session{UID: "u3", IDToken: "id-3", RefreshToken: "r-3", ExpiresAt: time.Now().Add(time.Hour)}
	_, err := g.UpdateIdentity(context.Background(), sess, "vid-3", "654321")
	require.NoError(t, err)
	assert.Empty(t, renewer.seen)
	assert.Equal(t, "id-3", fake.calls("verifyPhoneNumber")[0]["idToken"])
}

func TestUpdateIdentityRenewalFailureStopsCall(t *testing.T) {
	g, fake, _ := newTestGateway(t, nil)
	g.tokens = &fakeRenewer{failed: &Error{Code: CodeInvalidUserToken, Reason: "INVALID_REFRESH_TOKEN"}}

	sess := &models.Session{UID: "u3", IDToken: "id-3", RefreshToken: "r-3", ExpiresAt: time.Now().Add(-time.Minute)}
	_, err := g.UpdateIdentity(context.Background(), sess, "vid-3", "654321")
	assert.Equal(t, CodeInvalidUserToken, CodeOf(err))
	assert.Empty(t, fake.calls("verifyPhoneNumber"))
}

func TestCurrentSessionRenewsExpiredSession(t *testing.T) {
	g, _, cache := newTestGateway(t, nil)
	g.tokens = &fakeRenewer{grant: &TokenGrant{IDToken: "id-new", UID: "u7", ExpiresIn: time.Hour}}
	cache.Publish(context.Background(), &models.Session{
		UID: "u7", IDToken: "id-old", RefreshToken: "r-7", ExpiresAt: time.Now().Add(-time.Minute),
	})

	entry := g.CurrentSession(context.Background(), "u7")
	require.True(t, entry.Authenticated())
	assert.Equal(t, "id-new", entry.Session.IDToken)
	assert.Equal(t, "r-7", entry.Session.RefreshToken)
}

func TestCurrentSessionDropsUnrenewableSession(t *testing.T) {
	g, _, cache := newTestGateway(t, nil)
	cache.Publish(context.Background(), &models.Session{
		UID: "u8", IDToken: "id-old", ExpiresAt: time.Now().Add(-time.Minute),
	})

	entry := g.CurrentSession(context.Background(), "u8")
	assert.Equal(t, models.SessionAbsent, entry.State)
	assert.Equal(t, models.SessionAbsent, cache.Peek("u8").State)
}

func TestRenewRejectsForeignGrant(t *testing.T) {
	g, _, _ := newTestGateway(t, nil)
	g.tokens = &fakeRenewer{grant: &TokenGrant{IDToken: "id-x", UID: "someone-else"}}

	_, err := g.renew(context.Background(), &models.Session{UID: "u9", RefreshToken: "r-9"})
	assert.Equal(t, CodeInvalidUserToken, CodeOf(err))
}
