package usecase

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

// Status reports whether codes are currently accepted for the user.
func (s *Usecase) Status(ctx context.Context, in UserInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return false, goerror.NewInvalidInput(err)
	}

	acc, err := s.getAccount(ctx, in.UserID)
	if err != nil {
		return false, err
	}

	return acc.IsEnabled(), nil
}
