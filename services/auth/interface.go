package auth

import (
	"context"
	"time"

	"authlink/models"
	"authlink/services/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService drives the login, phone verification and linking flows.
// scope identifies the client whose loading flags an operation raises.
type AuthService interface {
	// Status
	Status(ctx context.Context, uid string) StatusView
	Loading(scope string, op Op) bool
	LoadingSnapshot(scope string) map[Op]bool

	// Email and password
	LoginOrSignUp(ctx context.Context, scope string, mode models.LoginMode, email, password string) (Result, error)
	LinkEmail(ctx context.Context, scope string, entry models.SessionEntry, email, password string) (Result, error)
	LinkFederated(ctx context.Context, scope string, entry models.SessionEntry, providerID, idToken string) (Result, error)

	// Phone
	SendCode(ctx context.Context, scope string, req PhoneRequest) (Result, error)
	VerifyCode(ctx context.Context, scope string, req VerifyRequest) (Result, error)
	LinkPhone(ctx context.Context, scope string, entry models.SessionEntry, req PhoneRequest) (Result, error)
	VerifyLinkPhone(ctx context.Context, scope string, entry models.SessionEntry, req VerifyRequest) (Result, error)

	// Session
	ExchangeIDToken(ctx context.Context, idToken string) (Result, error)
	SignOut(ctx context.Context, uid string) error
}

// StatusView is everything a client needs to pick its next page.
type StatusView struct {
	Status   models.AuthStatus       `json:"status"`
	Presence models.ProviderPresence `json:"presence"`
	Next     models.NextStep         `json:"next"`
	Session  *models.Session         `json:"-"`
}

// PhoneRequest asks for an OTP. An empty FlowID starts a new flow.
type PhoneRequest struct {
	FlowID      string
	PhoneNumber string
	Challenge   Challenge
}

// VerifyRequest submits the code for a flow started by a PhoneRequest.
type VerifyRequest struct {
	FlowID         string
	VerificationID string
	Code           string
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	Gateway  gateway.Gateway
	Flows    FlowStore
	Tracker  *Tracker
	Throttle *OTPThrottle

	// RejectConcurrent refuses a second call of an operation while the first is in flight.
	RejectConcurrent bool
	Logger           *zap.Logger
	Now              func() time.Time
}

func (s *DefaultAuthService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultAuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// begin raises the loading flag for op. It returns false if the call must be rejected.
func (s *DefaultAuthService) begin(scope string, op Op) bool {
	if s.RejectConcurrent {
		return s.Tracker.TryBegin(scope, op)
	}
	s.Tracker.Begin(scope, op)
	return true
}

func (s *DefaultAuthService) end(scope string, op Op) {
	s.Tracker.End(scope, op)
}

func (s *DefaultAuthService) Loading(scope string, op Op) bool {
	return s.Tracker.Loading(scope, op)
}

func (s *DefaultAuthService) LoadingSnapshot(scope string) map[Op]bool {
	return s.Tracker.Snapshot(scope)
}

func (s *DefaultAuthService) Status(ctx context.Context, uid string) StatusView {
	entry := s.Gateway.CurrentSession(ctx, uid)
	presence := Presence(entry.Session)
	return StatusView{
		Status:   Resolve(entry),
		Presence: presence,
		Next:     Next(presence),
		Session:  entry.Session,
	}
}

func (s *DefaultAuthService) ExchangeIDToken(ctx context.Context, idToken string) (Result, error) {
	if idToken == "" {
		return invalid(MsgMissingIDToken), nil
	}
	sess, err := s.Gateway.ExchangeIDToken(ctx, idToken)
	if err != nil {
		return s.failed("exchange-id-token", err), nil
	}
	return succeeded(sess, nil, ""), nil
}

func (s *DefaultAuthService) SignOut(ctx context.Context, uid string) error {
	return s.Gateway.SignOut(ctx, uid)
}

// refresh reloads sess once after a link. A failed reload keeps the linked session.
func (s *DefaultAuthService) refresh(ctx context.Context, sess *models.Session) *models.Session {
	refreshed, err := s.Gateway.Refresh(ctx, sess)
	if err != nil {
		s.logger().Warn("Session refresh after link failed",
			zap.String("uid", sess.UID), zap.String("code", gateway.CodeOf(err)))
		return sess
	}
	return refreshed
}

func (s *DefaultAuthService) failed(op string, err error) Result {
	res := gatewayFailure(err)
	s.logger().Info("Auth operation failed",
		zap.String("op", op), zap.String("code", res.Code), zap.Error(err))
	return res
}

func newFlowID() string {
	return uuid.New().String()
}
