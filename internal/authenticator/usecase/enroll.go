package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type UserInput struct {
	UserID int64 `validate:"gt=0"`
}

type EnrollOutput struct {
	Secret string
	URI    string
}

// BeginEnrollment issues a fresh secret and parks the account in
// PendingActivation. An enabled account is left untouched.
func (s *Usecase) BeginEnrollment(ctx context.Context, in UserInput) (*EnrollOutput, error) {
	ctx, span := s.startSpan(ctx, "BeginEnrollment")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.mutate(ctx, in.UserID, func(acc *entity.Account) (bool, error) {
		if acc.IsEnabled() {
			slog.WarnContext(ctx, "otp enrollment on enabled account", "user_id", in.UserID)
			return false, goerror.NewOTP(goerror.KindAlreadyEnabled)
		}

		secret, err := s.engine.GenerateSecret()
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate otp secret", "user_id", in.UserID, "error", err)
			return false, goerror.NewServer(err)
		}

		if err := acc.Begin(secret, s.clock.Now()); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(ctx, entity.StatusPendingActivation)

	return &EnrollOutput{
		Secret: acc.Secret,
		URI:    s.uri(in.UserID, acc.Secret),
	}, nil
}
