package mfa

// Purpose identifies what a sealed value is used for.
type Purpose string

// PurposeOTPSeed scopes encryption to TOTP shared secrets.
const PurposeOTPSeed Purpose = "otp_seed"

// Scope binds a ciphertext to its owner and purpose through AES-GCM AAD,
// so a sealed secret copied to another user's row fails to open.
type Scope struct {
	UserID  int64
	Purpose Purpose
}

// Encryptor seals and opens secrets at rest.
type Encryptor interface {
	Encrypt(plaintext []byte, scope Scope) ([]byte, error)
	Decrypt(ciphertext []byte, scope Scope) ([]byte, error)
}

// KeyProvider provides 32 byte AES-256 keys.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}
