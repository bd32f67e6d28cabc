package auth

import (
	"context"
	"sync"

	"authlink/models"
	"authlink/services/gateway"
)

// fakeGateway records calls and returns canned results.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	session        *models.Session
	verificationID string
	err            map[string]error
	current        models.SessionEntry

	// block, when set, is closed by the test to release a SignIn call.
	block   chan struct{}
	entered chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls:          make(map[string]int),
		err:            make(map[string]error),
		verificationID: "vid-1",
		session: &models.Session{
			UID:       "uid-1",
			Email:     "a@b.com",
			Providers: []string{models.ProviderPassword},
		},
	}
}

func (g *fakeGateway) record(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[name]++
	return g.err[name]
}

func (g *fakeGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

func (g *fakeGateway) fail(name, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err[name] = &gateway.Error{Code: gateway.CodeForReason(reason), Reason: reason}
}

func (g *fakeGateway) copySession() *models.Session {
	cp := *g.session
	cp.Providers = append([]string(nil), g.session.Providers...)
	return &cp
}

func (g *fakeGateway) CreateAccount(_ context.Context, email, _ string) (*models.Session, error) {
	if err := g.record("CreateAccount"); err != nil {
		return nil, err
	}
	return g.copySession(), nil
}

func (g *fakeGateway) SignIn(_ context.Context, _, _ string) (*models.Session, error) {
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
	if err := g.record("SignIn"); err != nil {
		return nil, err
	}
	return g.copySession(), nil
}

func (g *fakeGateway) LinkCredential(_ context.Context, sess *models.Session, cred gateway.Credential) (*models.Session, error) {
	if err := g.record("LinkCredential"); err != nil {
		return nil, err
	}
	cp := *sess
	provider := models.ProviderPassword
	if cred.Kind == gateway.CredentialFederated {
		provider = cred.ProviderID
	}
	cp.Providers = append(append([]string(nil), sess.Providers...), provider)
	return &cp, nil
}

func (g *fakeGateway) RequestOTP(_ context.Context, target gateway.OTPTarget, _, _ string) (string, error) {
	name := "RequestOTP"
	if !target.Anonymous() {
		name = "RequestOTPLinked"
	}
	if err := g.record(name); err != nil {
		return "", err
	}
	return g.verificationID, nil
}

func (g *fakeGateway) VerifyOTP(_ context.Context, _, _ string) (*models.Session, error) {
	if err := g.record("VerifyOTP"); err != nil {
		return nil, err
	}
	return &models.Session{UID: "phone-uid", PhoneNumber: "+15555550100", Providers: []string{models.ProviderPhone}}, nil
}

func (g *fakeGateway) UpdateIdentity(_ context.Context, sess *models.Session, _, _ string) (*models.Session, error) {
	if err := g.record("UpdateIdentity"); err != nil {
		return nil, err
	}
	cp := *sess
	cp.Providers = append(append([]string(nil), sess.Providers...), models.ProviderPhone)
	return &cp, nil
}

func (g *fakeGateway) CurrentSession(_ context.Context, _ string) models.SessionEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *fakeGateway) Refresh(_ context.Context, sess *models.Session) (*models.Session, error) {
	if err := g.record("Refresh"); err != nil {
		return nil, err
	}
	cp := *sess
	return &cp, nil
}

func (g *fakeGateway) ExchangeIDToken(_ context.Context, _ string) (*models.Session, error) {
	if err := g.record("ExchangeIDToken"); err != nil {
		return nil, err
	}
	return g.copySession(), nil
}

func (g *fakeGateway) SignOut(_ context.Context, _ string) error {
	return g.record("SignOut")
}
