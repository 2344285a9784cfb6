package inbound

import "time"

type UserRequest struct {
	UserID int64 `json:"user_id"`
}

type EnrollResponse struct {
	Secret     string `json:"secret"`
	QRCodeURL  string `json:"qr_code_url"`
	QRCodeData string `json:"qr_code_data"`
}

func (EnrollResponse) Message() string {
	return "Enrollment started. Confirm with a code to enable OTP."
}

type EnableRequest struct {
	UserID int64  `json:"user_id"`
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

type EnableResponse struct {
	Enabled bool `json:"enabled"`
}

func (r EnableResponse) Message() string {
	if r.Enabled {
		return "OTP enabled"
	}
	return "Invalid verification code"
}

type DisableRequest struct {
	UserID int64  `json:"user_id"`
	Code   string `json:"code,omitempty"`
}

type DisableResponse struct{}

func (DisableResponse) Message() string {
	return "OTP disabled"
}

type VerifyRequest struct {
	UserID int64  `json:"user_id"`
	Code   string `json:"code"`
}

// VerifyResponse is sent with HTTP 200 for every outcome. Code is "0000"
// when accepted and the rejection kind code otherwise.
type VerifyResponse struct {
	Valid            bool   `json:"valid"`
	Code             string `json:"code"`
	Msg              string `json:"message"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

func (r VerifyResponse) Message() string {
	return r.Msg
}

type StatusResponse struct {
	UserID           int64 `json:"user_id"`
	Enabled          bool  `json:"enabled"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

type InfoResponse struct {
	UserID    int64     `json:"userId"`
	Status    string    `json:"status"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	QRCodeURL string    `json:"qrCodeUrl,omitempty"`
}

type QRCodeDataResponse struct {
	UserID     int64  `json:"userId"`
	Username   string `json:"username"`
	Secret     string `json:"secret"`
	QRCodeURL  string `json:"qrCodeUrl"`
	QRCodeData string `json:"qrCodeData"`
	Enabled    bool   `json:"enabled"`
}
