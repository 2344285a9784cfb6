package entity

import (
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

// Account is the per-user OTP record. The zero value for a user is an
// unconfigured account that has never been stored.
type Account struct {
	UserID    int64
	Secret    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount returns the unconfigured account of userID.
func NewAccount(userID int64) *Account {
	return &Account{UserID: userID, Status: StatusUnconfigured}
}

func (a *Account) IsConfigured() bool {
	return a != nil && a.Status.Ensure() != StatusUnconfigured
}

func (a *Account) IsEnabled() bool {
	return a != nil && a.Status == StatusEnabled
}

// Begin issues secret and moves the account to StatusPendingActivation.
// An enabled account keeps its secret and yields KindAlreadyEnabled.
func (a *Account) Begin(secret string, now time.Time) error {
	if a.IsEnabled() {
		return goerror.NewOTP(goerror.KindAlreadyEnabled)
	}

	a.Secret = secret
	a.Status = StatusPendingActivation
	a.touch(now)
	return nil
}

// Enable stores secret and moves the account to StatusEnabled. It reports
// false and leaves the account untouched when it is already enabled.
func (a *Account) Enable(secret string, now time.Time) bool {
	if a.IsEnabled() {
		return false
	}

	a.Secret = secret
	a.Status = StatusEnabled
	a.touch(now)
	return true
}

// Disable moves a configured account to StatusDisabled and keeps the secret.
func (a *Account) Disable(now time.Time) error {
	if !a.IsConfigured() {
		return goerror.NewOTP(goerror.KindNotConfigured)
	}

	a.Status = StatusDisabled
	a.touch(now)
	return nil
}

func (a *Account) touch(now time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}
