package goerror

// CodeSuccess is the envelope code of every successful response.
const CodeSuccess = "0000"

// Kind is the closed set of authenticator outcomes that clients branch on.
// Each kind owns a stable wire code that never changes once published.
type Kind int

const (
	// KindUnknown is the fallback for anything not classified below.
	KindUnknown Kind = iota
	// KindInvalidCode means the code failed the format or HMAC check.
	KindInvalidCode
	// KindCodeExpired is reserved.
	KindCodeExpired
	// KindTooManyAttempts is reserved; no attempt counting exists.
	KindTooManyAttempts
	// KindNotConfigured means the user has no OTP record.
	KindNotConfigured
	// KindDisabled means the record exists but is not active.
	KindDisabled
	// KindSecretInvalid means a supplied secret carries no key material.
	KindSecretInvalid
	// KindQRGenerationFailed means the QR encoder failed.
	KindQRGenerationFailed
	// KindAlreadyEnabled means enrollment was attempted on an active record.
	KindAlreadyEnabled
	// KindSystemError is an unexpected cryptographic or runtime fault.
	KindSystemError
	// KindDatabaseError is a storage fault.
	KindDatabaseError
	// KindParameterInvalid means required input was missing or malformed.
	KindParameterInvalid
)

type kindInfo struct {
	name    string
	wire    string
	message string
	errType Type
	code    Code
}

var kinds = map[Kind]kindInfo{
	KindUnknown:            {"UNKNOWN_ERROR", "9999", "Unknown error", TypeServer, CodeInternal},
	KindInvalidCode:        {"INVALID_CODE", "1001", "Invalid verification code", TypeBusiness, CodeUnauthorized},
	KindCodeExpired:        {"CODE_EXPIRED", "1002", "Verification code expired", TypeBusiness, CodeUnauthorized},
	KindTooManyAttempts:    {"TOO_MANY_ATTEMPTS", "1003", "Too many attempts, try again later", TypeBusiness, CodeTooManyRequest},
	KindNotConfigured:      {"NOT_CONFIGURED", "1004", "OTP is not configured for this user", TypeBusiness, CodeNotFound},
	KindDisabled:           {"DISABLED", "1005", "OTP is disabled for this user", TypeBusiness, CodeForbidden},
	KindSecretInvalid:      {"SECRET_INVALID", "1006", "Invalid secret format", TypeValidation, CodeInvalidInput},
	KindQRGenerationFailed: {"QR_GENERATION_FAILED", "1007", "Failed to generate QR code", TypeServer, CodeInternal},
	KindAlreadyEnabled:     {"ALREADY_ENABLED", "1008", "OTP is already enabled for this user", TypeBusiness, CodeConflict},
	KindSystemError:        {"SYSTEM_ERROR", "2001", "Internal server error", TypeServer, CodeInternal},
	KindDatabaseError:      {"DATABASE_ERROR", "2002", "Database operation failed", TypeServer, CodeInternal},
	KindParameterInvalid:   {"PARAMETER_INVALID", "3001", "Invalid parameter", TypeValidation, CodeInvalidInput},
}

var kindByCode = func() map[string]Kind {
	m := make(map[string]Kind, len(kinds))
	for k, info := range kinds {
		m[info.wire] = k
	}
	return m
}()

func (k Kind) info() kindInfo {
	if info, ok := kinds[k]; ok {
		return info
	}
	return kinds[KindUnknown]
}

// String returns the upper snake case name of the kind.
func (k Kind) String() string {
	return k.info().name
}

// Code returns the stable wire code of the kind.
func (k Kind) Code() string {
	return k.info().wire
}

// Message returns the default user-facing message of the kind.
func (k Kind) Message() string {
	return k.info().message
}

// KindFromCode is the reverse of Kind.Code. Unknown codes map to KindUnknown.
func KindFromCode(code string) Kind {
	if k, ok := kindByCode[code]; ok {
		return k
	}
	return KindUnknown
}

// NewOTP creates an error of the given kind with its default message.
func NewOTP(kind Kind) error {
	info := kind.info()
	return &Error{msg: info.message, errType: info.errType, code: info.code, kind: kind}
}

// NewServerKind creates a server-type error of the given kind wrapping err.
func NewServerKind(err error, kind Kind) error {
	return &Error{err: err, msg: kind.Message(), errType: TypeServer, code: CodeInternal, kind: kind}
}
