package auth

import (
	"testing"
	"time"

	"authlink/models"
	"authlink/services/gateway"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	assert.Equal(t, models.AuthLoading, Resolve(models.SessionEntry{State: models.SessionLoading}).Type)
	assert.Equal(t, models.AuthUnauthenticated, Resolve(models.SessionEntry{State: models.SessionAbsent}).Type)
	assert.Equal(t, models.AuthUnauthenticated, Resolve(models.SessionEntry{State: models.SessionPresent}).Type)

	status := Resolve(models.SessionEntry{State: models.SessionPresent, Session: &models.Session{UID: "u"}})
	assert.Equal(t, models.AuthStatus{Type: models.AuthAuthenticated, Identity: "u"}, status)
}

func TestPresenceAndNext(t *testing.T) {
	cases := []struct {
		providers []string
		want      models.ProviderPresence
		next      models.NextStep
	}{
		{nil, models.ProviderPresence{}, models.StepNone},
		{[]string{"password"}, models.ProviderPresence{EmailLinked: true}, models.StepLinkPhone},
		{[]string{"google.com"}, models.ProviderPresence{EmailLinked: true}, models.StepLinkPhone},
		{[]string{"federated:acme"}, models.ProviderPresence{EmailLinked: true}, models.StepLinkPhone},
		{[]string{"phone"}, models.ProviderPresence{PhoneLinked: true}, models.StepLinkEmail},
		{[]string{"phone", "password"}, models.ProviderPresence{EmailLinked: true, PhoneLinked: true}, models.StepComplete},
		{[]string{"anonymous"}, models.ProviderPresence{}, models.StepNone},
	}
	for _, tc := range cases {
		got := Presence(&models.Session{Providers: tc.providers})
		assert.Equal(t, tc.want, got, "%v", tc.providers)
		assert.Equal(t, tc.next, Next(got), "%v", tc.providers)
	}
	assert.Equal(t, models.ProviderPresence{}, Presence(nil))
}

func TestFriendlyMessageIsTotal(t *testing.T) {
	assert.Equal(t, MsgGeneric, FriendlyMessage(""))
	assert.Equal(t, MsgGeneric, FriendlyMessage("auth/brand-new"))
	assert.Equal(t, MsgGeneric, FriendlyMessage(gateway.CodeInternalError))
	assert.Equal(t, MsgInvalidEmail, FriendlyMessage(gateway.CodeInvalidEmail))
	assert.Equal(t, FriendlyMessage(gateway.CodeInvalidUserToken), FriendlyMessage(gateway.CodeUserTokenExpired))
}

func TestTrackerScopesAndTryBegin(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.TryBegin("a", OpLogin))
	assert.False(t, tr.TryBegin("a", OpLogin))
	assert.True(t, tr.TryBegin("b", OpLogin))
	assert.True(t, tr.TryBegin("a", OpSendCode))

	snap := tr.Snapshot("a")
	assert.True(t, snap[OpLogin])
	assert.True(t, snap[OpSendCode])
	assert.False(t, snap[OpLinkEmail])
	assert.Len(t, snap, len(Ops()))

	tr.End("a", OpLogin)
	assert.False(t, tr.Loading("a", OpLogin))
	assert.True(t, tr.Loading("b", OpLogin))
}

func TestTrackerUnsubscribe(t *testing.T) {
	tr := NewTracker()
	var seen []bool
	unsub := tr.Subscribe("a", OpLogin, func(v bool) { seen = append(seen, v) })
	tr.Begin("a", OpLogin)
	tr.Begin("b", OpLogin)
	unsub()
	tr.End("a", OpLogin)
	assert.Equal(t, []bool{true}, seen)
}

func TestParseOp(t *testing.T) {
	op, ok := ParseOp("verify-code-link")
	assert.True(t, ok)
	assert.Equal(t, OpVerifyCodeLink, op)
	_, ok = ParseOp("bogus")
	assert.False(t, ok)
}

func TestWidgetLifecycle(t *testing.T) {
	expired := 0
	w := NewWidget(time.Minute, func() { expired++ })
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	w.Resolve("early", now)
	assert.False(t, w.Resolved(), "tokens before render are dropped")

	w.Render()
	w.Resolve("tok", now)
	assert.True(t, w.Resolved())
	assert.Equal(t, "tok", w.Token())

	w.Reset()
	assert.False(t, w.Resolved())
	assert.Zero(t, expired)

	w.Resolve("tok", now)
	now = now.Add(2 * time.Minute)
	assert.False(t, w.Resolved())
	assert.Equal(t, 1, expired)
	assert.Empty(t, w.Token())

	w.Expire()
	assert.Equal(t, 1, expired, "expiring an empty widget is silent")
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidEmail("a@b.com"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("a@"))
	assert.True(t, ValidPassword("123456"))
	assert.False(t, ValidPassword("12345"))
	assert.True(t, ValidPhone("+254700000"))
	assert.False(t, ValidPhone("  +2547  "))
}

func TestOTPThrottleDisabled(t *testing.T) {
	th := NewOTPThrottle(0)
	for i := 0; i < 10; i++ {
		assert.True(t, th.Allow("+15555550100"))
	}
}
