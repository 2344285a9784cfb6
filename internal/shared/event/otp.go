package event

import "time"

// OTPEnabledDestination receives a message each time an account becomes active.
const OTPEnabledDestination string = "authenticator.otp.enabled"

// OTPDisabledDestination receives a message each time an account is switched off.
const OTPDisabledDestination string = "authenticator.otp.disabled"

type OTPEnabledMessage struct {
	EventID    string    `json:"event_id"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type OTPDisabledMessage struct {
	EventID    string    `json:"event_id"`
	UserID     int64     `json:"user_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Disable reasons.
const (
	DisableReasonUser          = "user_confirmed"
	DisableReasonAdminOverride = "admin_override"
)
