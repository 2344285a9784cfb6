package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

// QRCode renders the provisioning URI of an enabled account as a PNG.
func (s *Usecase) QRCode(ctx context.Context, in UserInput) ([]byte, error) {
	ctx, span := s.startSpan(ctx, "QRCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.getAccount(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !acc.IsConfigured() {
		return nil, goerror.NewOTP(goerror.KindNotConfigured)
	}
	if !acc.IsEnabled() {
		return nil, goerror.NewOTP(goerror.KindDisabled)
	}

	png, err := s.qr.Encode(s.uri(acc.UserID, acc.Secret), s.qrSize())
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode otp qr code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServerKind(err, goerror.KindQRGenerationFailed)
	}

	return png, nil
}
