package entity

// Status is the lifecycle state of a user's OTP account.
type Status int16

const (
	// StatusUnconfigured means no record exists for the user.
	StatusUnconfigured Status = 0

	// StatusPendingActivation means a secret was issued but not yet confirmed with a code.
	StatusPendingActivation Status = 1

	// StatusEnabled means codes are accepted.
	StatusEnabled Status = 2

	// StatusDisabled means the record is kept but codes are rejected.
	StatusDisabled Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusPendingActivation:
		return "PendingActivation"
	case StatusEnabled:
		return "Enabled"
	case StatusDisabled:
		return "Disabled"
	default:
		return "Unconfigured"
	}
}

// Ensure folds anything outside the known set into StatusUnconfigured.
func (s Status) Ensure() Status {
	switch s {
	case StatusPendingActivation, StatusEnabled, StatusDisabled:
		return s
	default:
		return StatusUnconfigured
	}
}
