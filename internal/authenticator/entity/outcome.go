package entity

import "github.com/shandysiswandi/gotp/internal/pkg/goerror"

// VerificationOutcome is the structured result of checking a code. A
// rejection always carries the kind that explains it.
type VerificationOutcome struct {
	accepted bool
	reason   goerror.Kind
}

func Accepted() VerificationOutcome {
	return VerificationOutcome{accepted: true}
}

func Rejected(reason goerror.Kind) VerificationOutcome {
	return VerificationOutcome{reason: reason}
}

func (o VerificationOutcome) IsAccepted() bool {
	return o.accepted
}

// Reason is KindUnknown for an accepted outcome.
func (o VerificationOutcome) Reason() goerror.Kind {
	if o.accepted {
		return goerror.KindUnknown
	}
	return o.reason
}

// Code is the wire code clients branch on: "0000" when accepted.
func (o VerificationOutcome) Code() string {
	if o.accepted {
		return goerror.CodeSuccess
	}
	return o.reason.Code()
}

func (o VerificationOutcome) String() string {
	if o.accepted {
		return "accepted"
	}
	return "rejected:" + o.reason.String()
}
