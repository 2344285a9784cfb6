package tests

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"testing"

	"github.com/shandysiswandi/gotp/internal/pkg/otp"
)

type enrollData struct {
	Secret     string `json:"secret"`
	QRCodeURL  string `json:"qr_code_url"`
	QRCodeData string `json:"qr_code_data"`
}

type verifyData struct {
	Valid            bool   `json:"valid"`
	Code             string `json:"code"`
	Message          string `json:"message"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// newUserID picks an id unlikely to collide with earlier runs.
func newUserID() int64 {
	return rand.Int64N(1<<40) + 1
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()

	e := otp.NewEngine(nil, nil)
	code, err := e.ComputeCode(secret, e.Counter())
	if err != nil {
		t.Fatalf("compute code: %v", err)
	}

	return code
}

func enroll(t *testing.T, userID int64) enrollData {
	t.Helper()

	var data enrollData
	status, env := doJSON(t, http.MethodPost, "/api/v1/otp/enroll", map[string]any{"user_id": userID}, &data)
	if status != http.StatusOK || env.Code != "0000" {
		t.Fatalf("enroll: status=%d code=%s message=%s", status, env.Code, env.Message)
	}

	return data
}

func enable(t *testing.T, userID int64, secret string) {
	t.Helper()

	var data struct {
		Enabled bool `json:"enabled"`
	}
	payload := map[string]any{"user_id": userID, "secret": secret, "code": currentCode(t, secret)}
	status, env := doJSON(t, http.MethodPost, "/api/v1/otp/enable", payload, &data)
	if status != http.StatusOK || !data.Enabled {
		t.Fatalf("enable: status=%d code=%s enabled=%v", status, env.Code, data.Enabled)
	}
}

func verify(t *testing.T, userID int64, code string) verifyData {
	t.Helper()

	var data verifyData
	status, env := doJSON(t, http.MethodPost, "/api/v1/otp/verify", map[string]any{"user_id": userID, "code": code}, &data)
	if status != http.StatusOK || env.Code != "0000" {
		t.Fatalf("verify: status=%d code=%s", status, env.Code)
	}

	return data
}

func query(path string, userID int64) string {
	return fmt.Sprintf("%s?user_id=%d", path, userID)
}
