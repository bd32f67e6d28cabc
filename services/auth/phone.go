package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"authlink/models"
	"authlink/services/gateway"

	"go.uber.org/zap"
)

// SendCode starts a phone sign-in flow. The challenge must be resolved before the
// phone number is even looked at.
func (s *DefaultAuthService) SendCode(ctx context.Context, scope string, req PhoneRequest) (Result, error) {
	return s.sendCode(ctx, scope, OpSignInWithPhone, models.PurposeSignIn, nil, req)
}

// LinkPhone sends a code to a number that will be attached to the signed-in identity.
func (s *DefaultAuthService) LinkPhone(ctx context.Context, scope string, entry models.SessionEntry, req PhoneRequest) (Result, error) {
	if !entry.Authenticated() {
		return ignored(), nil
	}
	return s.sendCode(ctx, scope, OpSendCode, models.PurposeLink, entry.Session, req)
}

func (s *DefaultAuthService) sendCode(ctx context.Context, scope string, op Op, purpose models.FlowPurpose, sess *models.Session, req PhoneRequest) (Result, error) {
	if req.Challenge == nil || !req.Challenge.Resolved() {
		return invalid(MsgResolveChallenge), nil
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if !ValidPhone(phone) {
		return invalid(MsgInvalidPhone), nil
	}
	if !s.begin(scope, op) {
		return inFlight(), nil
	}
	defer s.end(scope, op)

	if !s.Throttle.Allow(phone) {
		return invalid(MsgOTPThrottled), nil
	}

	now := s.now()
	flow := &models.PhoneFlow{
		ID:            req.FlowID,
		Purpose:       purpose,
		State:         models.FlowIdle,
		PhoneNumber:   phone,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if flow.ID == "" {
		flow.ID = newFlowID()
	}
	if w, ok := req.Challenge.(interface{ ResolvedAt() time.Time }); ok {
		flow.ChallengeResolvedAt = w.ResolvedAt()
	}
	if sess != nil {
		flow.UID = sess.UID
	}
	if err := s.Flows.Save(ctx, flow); err != nil {
		return Result{}, err
	}

	verificationID, err := s.Gateway.RequestOTP(ctx, gateway.OTPTarget{Session: sess}, phone, req.Challenge.Token())
	if err != nil {
		// a used or rejected token cannot be submitted again
		req.Challenge.Reset()
		return s.failed(string(op), err), nil
	}

	flow.State = models.FlowCodeSent
	flow.VerificationID = verificationID
	flow.LastUpdatedAt = s.now()
	if err := s.Flows.Save(ctx, flow); err != nil {
		return Result{}, err
	}
	s.logger().Info("Verification code sent", zap.String("flowID", flow.ID), zap.String("purpose", string(purpose)))
	return succeeded(nil, flow, MsgCodeSent), nil
}

// VerifyCode completes a phone sign-in flow. Calls without a code or verification id,
// or for a flow that is not waiting on a code, are ignored.
func (s *DefaultAuthService) VerifyCode(ctx context.Context, scope string, req VerifyRequest) (Result, error) {
	flow, ok, err := s.pendingFlow(ctx, req, models.PurposeSignIn, "")
	if err != nil || !ok {
		return ignored(), err
	}

	if !s.begin(scope, OpVerifyCodeSignIn) {
		return inFlight(), nil
	}
	defer s.end(scope, OpVerifyCodeSignIn)

	sess, err := s.Gateway.VerifyOTP(ctx, flow.VerificationID, req.Code)
	if err != nil {
		return s.failFlow(ctx, flow, OpVerifyCodeSignIn, err)
	}
	sess = s.refresh(ctx, sess)

	flow.UID = sess.UID
	if err := s.finishFlow(ctx, flow); err != nil {
		return Result{}, err
	}
	return succeeded(sess, flow, MsgLoggedIn), nil
}

// VerifyLinkPhone completes a link flow and attaches the number to the signed-in identity.
func (s *DefaultAuthService) VerifyLinkPhone(ctx context.Context, scope string, entry models.SessionEntry, req VerifyRequest) (Result, error) {
	if !entry.Authenticated() {
		return ignored(), nil
	}
	flow, ok, err := s.pendingFlow(ctx, req, models.PurposeLink, entry.Session.UID)
	if err != nil || !ok {
		return ignored(), err
	}

	if !s.begin(scope, OpVerifyCodeLink) {
		return inFlight(), nil
	}
	defer s.end(scope, OpVerifyCodeLink)

	linked, err := s.Gateway.UpdateIdentity(ctx, entry.Session, flow.VerificationID, req.Code)
	if err != nil {
		return s.failFlow(ctx, flow, OpVerifyCodeLink, err)
	}
	linked = s.refresh(ctx, linked)

	if err := s.finishFlow(ctx, flow); err != nil {
		return Result{}, err
	}
	return succeeded(linked, flow, MsgPhoneLinked), nil
}

// pendingFlow loads the flow a verify request refers to. ok is false when the request
// should be ignored.
func (s *DefaultAuthService) pendingFlow(ctx context.Context, req VerifyRequest, purpose models.FlowPurpose, uid string) (*models.PhoneFlow, bool, error) {
	if req.Code == "" || req.VerificationID == "" || req.FlowID == "" {
		return nil, false, nil
	}
	flow, err := s.Flows.Load(ctx, req.FlowID)
	if errors.Is(err, ErrFlowNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if flow.Purpose != purpose || flow.State != models.FlowCodeSent || flow.VerificationID != req.VerificationID {
		return nil, false, nil
	}
	if purpose == models.PurposeLink && flow.UID != uid {
		return nil, false, nil
	}
	return flow, true, nil
}

func (s *DefaultAuthService) failFlow(ctx context.Context, flow *models.PhoneFlow, op Op, cause error) (Result, error) {
	flow.State = models.FlowFailed
	flow.LastUpdatedAt = s.now()
	if err := s.Flows.Save(ctx, flow); err != nil {
		return Result{}, err
	}
	return s.failed(string(op), cause), nil
}

// finishFlow consumes a redeemed flow. The VERIFIED state is only reported back to the caller.
func (s *DefaultAuthService) finishFlow(ctx context.Context, flow *models.PhoneFlow) error {
	flow.State = models.FlowVerified
	flow.LastUpdatedAt = s.now()
	return s.Flows.Delete(ctx, flow.ID)
}
