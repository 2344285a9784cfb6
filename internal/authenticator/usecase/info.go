package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type InfoOutput struct {
	UserID    int64
	Status    entity.Status
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
	// URI is only set for enabled accounts.
	URI string
}

func (s *Usecase) Info(ctx context.Context, in UserInput) (*InfoOutput, error) {
	ctx, span := s.startSpan(ctx, "Info")
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

	out := &InfoOutput{
		UserID:    acc.UserID,
		Status:    acc.Status,
		Enabled:   acc.IsEnabled(),
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
	if out.Enabled {
		out.URI = s.uri(acc.UserID, acc.Secret)
	}

	return out, nil
}
