package auth

import (
	"context"

	"authlink/models"

	"go.uber.org/zap"
)

// LoginOrSignUp signs in with email and password, creating the account first in sign-up mode.
// Invalid input is rejected before the backend is called.
func (s *DefaultAuthService) LoginOrSignUp(ctx context.Context, scope string, mode models.LoginMode, email, password string) (Result, error) {
	if mode != models.ModeLogin && mode != models.ModeSignUp {
		return invalid(MsgUnsupportedMode), nil
	}
	if !ValidEmail(email) {
		return invalid(MsgInvalidEmail), nil
	}
	if !ValidPassword(password) {
		return invalid(MsgShortPassword), nil
	}

	if !s.begin(scope, OpLogin) {
		return inFlight(), nil
	}
	defer s.end(scope, OpLogin)

	if mode == models.ModeSignUp {
		if _, err := s.Gateway.CreateAccount(ctx, email, password); err != nil {
			return s.failed(string(OpLogin), err), nil
		}
		s.logger().Info("Account created", zap.String("email", email))
	}

	sess, err := s.Gateway.SignIn(ctx, email, password)
	if err != nil {
		return s.failed(string(OpLogin), err), nil
	}
	return succeeded(sess, nil, ""), nil
}
