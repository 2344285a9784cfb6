package tests

import (
	"net/http"
	"strings"
	"testing"
)

func TestOTPLifecycle(t *testing.T) {
	userID := newUserID()

	// enroll leaves the account pending
	data := enroll(t, userID)
	if data.Secret == "" || !strings.HasPrefix(data.QRCodeURL, "otpauth://totp/") {
		t.Fatalf("unexpected enroll data: %+v", data)
	}

	if got := verify(t, userID, currentCode(t, data.Secret)); got.Valid || got.Code != "1005" {
		t.Fatalf("pending account must reject with 1005, got %+v", got)
	}

	// enable
	enable(t, userID, data.Secret)

	got := verify(t, userID, currentCode(t, data.Secret))
	if !got.Valid || got.Code != "0000" {
		t.Fatalf("expected accepted code, got %+v", got)
	}
	if got.RemainingSeconds < 1 || got.RemainingSeconds > 30 {
		t.Fatalf("remaining seconds out of range: %d", got.RemainingSeconds)
	}

	var status struct {
		Enabled bool `json:"enabled"`
	}
	doJSON(t, http.MethodGet, query("/api/v1/otp/status", userID), nil, &status)
	if !status.Enabled {
		t.Fatalf("expected status enabled")
	}

	// enrolling again is refused
	code, env := doJSON(t, http.MethodPost, "/api/v1/otp/enroll", map[string]any{"user_id": userID}, nil)
	if code != http.StatusConflict || env.Code != "1008" {
		t.Fatalf("expected 409/1008, got %d/%s", code, env.Code)
	}

	// disable with a code
	code, env = doJSON(t, http.MethodPost, "/api/v1/otp/disable", map[string]any{
		"user_id": userID,
		"code":    currentCode(t, data.Secret),
	}, nil)
	if code != http.StatusOK || env.Code != "0000" {
		t.Fatalf("disable: %d/%s", code, env.Code)
	}

	if got := verify(t, userID, currentCode(t, data.Secret)); got.Valid || got.Code != "1005" {
		t.Fatalf("disabled account must reject with 1005, got %+v", got)
	}
}

func TestOTPVerify_NotConfigured(t *testing.T) {
	got := verify(t, newUserID(), "123456")
	if got.Valid || got.Code != "1004" {
		t.Fatalf("expected 1004, got %+v", got)
	}
}

func TestOTPVerify_BadFormat(t *testing.T) {
	got := verify(t, newUserID(), "12ab56")
	if got.Valid || got.Code != "1001" {
		t.Fatalf("expected 1001, got %+v", got)
	}
}

func TestOTPEnable_WrongCode(t *testing.T) {
	userID := newUserID()
	data := enroll(t, userID)

	wrong := "000000"
	if currentCode(t, data.Secret) == wrong {
		wrong = "111111"
	}

	var out struct {
		Enabled bool `json:"enabled"`
	}
	status, _ := doJSON(t, http.MethodPost, "/api/v1/otp/enable", map[string]any{
		"user_id": userID,
		"secret":  data.Secret,
		"code":    wrong,
	}, &out)
	if status != http.StatusOK || out.Enabled {
		t.Fatalf("expected enabled=false, got status=%d enabled=%v", status, out.Enabled)
	}
}

func TestOTPEnroll_InvalidUser(t *testing.T) {
	status, env := doJSON(t, http.MethodPost, "/api/v1/otp/enroll", map[string]any{"user_id": 0}, nil)
	if status != http.StatusUnprocessableEntity || env.Code != "3001" {
		t.Fatalf("expected 422/3001, got %d/%s", status, env.Code)
	}
}
