package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type ProvisioningOutput struct {
	UserID   int64
	Username string
	Secret   string
	URI      string
	Enabled  bool
}

// Provisioning returns what an authenticator app needs to scan. An enabled
// account yields its current secret; anything else starts a new enrollment,
// which still has to be confirmed through Activate.
func (s *Usecase) Provisioning(ctx context.Context, in UserInput) (*ProvisioningOutput, error) {
	ctx, span := s.startSpan(ctx, "Provisioning")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.getAccount(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if acc.IsEnabled() {
		return s.provisioningOf(in.UserID, acc.Secret, true), nil
	}

	enr, err := s.BeginEnrollment(ctx, in)
	if err == nil {
		return s.provisioningOf(in.UserID, enr.Secret, false), nil
	}

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Kind() != goerror.KindAlreadyEnabled {
		return nil, err
	}

	// enabled concurrently between the read and the enrollment
	slog.InfoContext(ctx, "otp account enabled during provisioning", "user_id", in.UserID)
	acc, err = s.getAccount(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return s.provisioningOf(in.UserID, acc.Secret, acc.IsEnabled()), nil
}

func (s *Usecase) provisioningOf(userID int64, secret string, enabled bool) *ProvisioningOutput {
	return &ProvisioningOutput{
		UserID:   userID,
		Username: "user" + accountLabel(userID),
		Secret:   secret,
		URI:      s.uri(userID, secret),
		Enabled:  enabled,
	}
}
