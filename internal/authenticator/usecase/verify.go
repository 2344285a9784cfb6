package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
)

type VerifyInput struct {
	UserID int64 `validate:"gt=0"`
	Code   string
}

// Verify checks Code against the stored secret. Rejections are outcomes, not
// errors; the error is reserved for bad input and storage or crypto faults.
// Verify never writes.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (entity.VerificationOutcome, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return entity.VerificationOutcome{}, goerror.NewInvalidInput(err)
	}

	out, err := s.verify(ctx, in)
	if err != nil {
		return entity.VerificationOutcome{}, err
	}

	s.recordVerification(ctx, out)
	if !out.IsAccepted() {
		slog.WarnContext(ctx, "otp verification rejected", "user_id", in.UserID, "reason", out.Reason().String())
	}

	return out, nil
}

func (s *Usecase) verify(ctx context.Context, in VerifyInput) (entity.VerificationOutcome, error) {
	if !otp.IsCodeFormat(in.Code) {
		return entity.Rejected(goerror.KindInvalidCode), nil
	}

	acc, err := s.getAccount(ctx, in.UserID)
	if err != nil {
		return entity.VerificationOutcome{}, err
	}

	switch {
	case !acc.IsConfigured():
		return entity.Rejected(goerror.KindNotConfigured), nil
	case !acc.IsEnabled():
		return entity.Rejected(goerror.KindDisabled), nil
	}

	ok, err := s.engine.VerifyCode(in.Code, acc.Secret)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify otp code", "user_id", in.UserID, "error", err)
		return entity.VerificationOutcome{}, goerror.NewServer(err)
	}
	if !ok {
		return entity.Rejected(goerror.KindInvalidCode), nil
	}

	return entity.Accepted(), nil
}
