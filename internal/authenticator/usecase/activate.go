package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
)

type ActivateInput struct {
	UserID int64  `validate:"gt=0"`
	Secret string `validate:"required"`
	Code   string `validate:"required"`
}

// Activate confirms possession of Secret with Code and enables the account
// with that secret. It serves both the two-step flow after BeginEnrollment
// and a one-shot flow where no record exists yet. A wrong code reports false
// and changes nothing; an already enabled account reports true unchanged.
func (s *Usecase) Activate(ctx context.Context, in ActivateInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "Activate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return false, goerror.NewInvalidInput(err)
	}

	secret := otp.CanonicalSecret(in.Secret)
	if secret == "" {
		slog.WarnContext(ctx, "otp secret carries no key material", "user_id", in.UserID)
		return false, goerror.NewOTP(goerror.KindSecretInvalid)
	}

	ok, err := s.engine.VerifyCode(in.Code, secret)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify otp code", "user_id", in.UserID, "error", err)
		return false, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "otp activation code rejected", "user_id", in.UserID)
		return false, nil
	}

	changed := false
	acc, err := s.mutate(ctx, in.UserID, func(acc *entity.Account) (bool, error) {
		changed = acc.Enable(secret, s.clock.Now())
		return changed, nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		s.recordTransition(ctx, entity.StatusEnabled)
		s.publishEnabled(ctx, in.UserID, acc.UpdatedAt)
	}

	return true, nil
}
