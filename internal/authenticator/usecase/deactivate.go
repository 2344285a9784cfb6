package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/shared/event"
)

type DeactivateInput struct {
	UserID int64 `validate:"gt=0"`
	// Code is optional. A blank code disables without re-proof and is
	// reserved for callers that authenticated the user themselves.
	Code string
}

func (s *Usecase) Deactivate(ctx context.Context, in DeactivateInput) error {
	ctx, span := s.startSpan(ctx, "Deactivate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	code := strings.TrimSpace(in.Code)
	reason := event.DisableReasonUser
	prev := entity.StatusUnconfigured

	acc, err := s.mutate(ctx, in.UserID, func(acc *entity.Account) (bool, error) {
		if !acc.IsConfigured() {
			slog.WarnContext(ctx, "otp disable on unconfigured account", "user_id", in.UserID)
			return false, goerror.NewOTP(goerror.KindNotConfigured)
		}

		if code != "" {
			ok, err := s.engine.VerifyCode(code, acc.Secret)
			if err != nil {
				slog.ErrorContext(ctx, "failed to verify otp code", "user_id", in.UserID, "error", err)
				return false, goerror.NewServer(err)
			}
			if !ok {
				slog.WarnContext(ctx, "otp disable code rejected", "user_id", in.UserID)
				return false, goerror.NewOTP(goerror.KindInvalidCode)
			}
		} else {
			reason = event.DisableReasonAdminOverride
			slog.WarnContext(ctx, "otp disabled without code", "user_id", in.UserID, "reason", reason)
		}

		prev = acc.Status
		return true, acc.Disable(s.clock.Now())
	})
	if err != nil {
		return err
	}

	if prev != entity.StatusDisabled {
		s.recordTransition(ctx, entity.StatusDisabled)
		s.publishDisabled(ctx, in.UserID, reason, acc.UpdatedAt)
	}

	return nil
}
