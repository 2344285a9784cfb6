package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uri = "otpauth://totp/NOTP-System:42?secret=ABC&issuer=NOTP-System&algorithm=SHA512&digits=6&period=30"

type fakeUC struct {
	activateIn   usecase.ActivateInput
	deactivateIn usecase.DeactivateInput
	outcome      entity.VerificationOutcome
	err          error
}

func (f *fakeUC) BeginEnrollment(_ context.Context, in usecase.UserInput) (*usecase.EnrollOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.EnrollOutput{Secret: "ABC", URI: uri}, nil
}

func (f *fakeUC) Activate(_ context.Context, in usecase.ActivateInput) (bool, error) {
	f.activateIn = in
	return in.Code == "111111", f.err
}

func (f *fakeUC) Deactivate(_ context.Context, in usecase.DeactivateInput) error {
	f.deactivateIn = in
	return f.err
}

func (f *fakeUC) Verify(context.Context, usecase.VerifyInput) (entity.VerificationOutcome, error) {
	return f.outcome, f.err
}

func (f *fakeUC) Status(_ context.Context, in usecase.UserInput) (bool, error) {
	return in.UserID == 42, f.err
}

func (f *fakeUC) Info(_ context.Context, in usecase.UserInput) (*usecase.InfoOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &usecase.InfoOutput{UserID: in.UserID, Status: entity.StatusEnabled, Enabled: true, CreatedAt: at, UpdatedAt: at, URI: uri}, nil
}

func (f *fakeUC) Provisioning(_ context.Context, in usecase.UserInput) (*usecase.ProvisioningOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ProvisioningOutput{UserID: in.UserID, Username: "user42", Secret: "ABC", URI: uri}, nil
}

func (f *fakeUC) QRCode(context.Context, usecase.UserInput) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("\x89PNG"), nil
}

func (f *fakeUC) RemainingSeconds() int { return 17 }

func newServer(uc *fakeUC) http.Handler {
	r := router.NewRouter(router.Config{})
	RegisterHTTPEndpoint(r, uc)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, router.Envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env router.Envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHTTP_Enroll(t *testing.T) {
	rec, env := do(t, newServer(&fakeUC{}), http.MethodPost, "/api/v1/otp/enroll", `{"user_id":42}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0000", env.Code)
	assert.Equal(t, map[string]any{"secret": "ABC", "qr_code_url": uri, "qr_code_data": uri}, env.Data)
}

func TestHTTP_Enroll_AlreadyEnabled(t *testing.T) {
	rec, env := do(t, newServer(&fakeUC{err: goerror.NewOTP(goerror.KindAlreadyEnabled)}), http.MethodPost, "/api/v1/otp/enroll", `{"user_id":42}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "1008", env.Code)
	assert.Equal(t, goerror.KindAlreadyEnabled.Message(), env.Message)
}

func TestHTTP_Enable(t *testing.T) {
	uc := &fakeUC{}
	h := newServer(uc)

	rec, env := do(t, h, http.MethodPost, "/api/v1/otp/enable", `{"user_id":42,"secret":"ABC","code":"111111"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"enabled": true}, env.Data)
	assert.Equal(t, "OTP enabled", env.Message)
	assert.Equal(t, usecase.ActivateInput{UserID: 42, Secret: "ABC", Code: "111111"}, uc.activateIn)

	_, env = do(t, h, http.MethodPost, "/api/v1/otp/enable", `{"user_id":42,"secret":"ABC","code":"222222"}`)
	assert.Equal(t, map[string]any{"enabled": false}, env.Data)
}

func TestHTTP_Enable_BadBody(t *testing.T) {
	rec, env := do(t, newServer(&fakeUC{}), http.MethodPost, "/api/v1/otp/enable", `{"user_id":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "3001", env.Code)
}

func TestHTTP_Disable(t *testing.T) {
	uc := &fakeUC{}
	rec, env := do(t, newServer(uc), http.MethodPost, "/api/v1/otp/disable", `{"user_id":42}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP disabled", env.Message)
	assert.Equal(t, usecase.DeactivateInput{UserID: 42}, uc.deactivateIn)

	rec, env = do(t, newServer(&fakeUC{err: goerror.NewOTP(goerror.KindInvalidCode)}), http.MethodPost, "/api/v1/otp/disable", `{"user_id":42,"code":"000000"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "1001", env.Code)
}

func TestHTTP_Verify(t *testing.T) {
	tests := []struct {
		name    string
		outcome entity.VerificationOutcome
		want    map[string]any
	}{
		{
			name:    "accepted",
			outcome: entity.Accepted(),
			want:    map[string]any{"valid": true, "code": "0000", "message": "OTP verified", "remaining_seconds": float64(17)},
		},
		{
			name:    "disabled",
			outcome: entity.Rejected(goerror.KindDisabled),
			want:    map[string]any{"valid": false, "code": "1005", "message": goerror.KindDisabled.Message(), "remaining_seconds": float64(17)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, newServer(&fakeUC{outcome: tt.outcome}), http.MethodPost, "/api/v1/otp/verify", `{"user_id":42,"code":"123456"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "0000", env.Code)
			assert.Equal(t, tt.want, env.Data)
			assert.Equal(t, tt.want["message"], env.Message)
		})
	}
}

func TestHTTP_Status(t *testing.T) {
	h := newServer(&fakeUC{})

	_, env := do(t, h, http.MethodGet, "/api/v1/otp/status?user_id=42", "")
	assert.Equal(t, map[string]any{"user_id": float64(42), "enabled": true, "remaining_seconds": float64(17)}, env.Data)

	rec, env := do(t, h, http.MethodGet, "/api/v1/otp/status?user_id=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "3001", env.Code)
}

func TestHTTP_Info(t *testing.T) {
	_, env := do(t, newServer(&fakeUC{}), http.MethodGet, "/api/v1/otp/info?user_id=42", "")

	assert.Equal(t, map[string]any{
		"userId":    float64(42),
		"status":    "Enabled",
		"enabled":   true,
		"createdAt": "2026-01-01T00:00:00Z",
		"updatedAt": "2026-01-01T00:00:00Z",
		"qrCodeUrl": uri,
	}, env.Data)

	rec, env := do(t, newServer(&fakeUC{err: goerror.NewOTP(goerror.KindNotConfigured)}), http.MethodGet, "/api/v1/otp/info?user_id=42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "1004", env.Code)
}

func TestHTTP_QRCodeData(t *testing.T) {
	_, env := do(t, newServer(&fakeUC{}), http.MethodGet, "/api/v1/otp/qr-code?user_id=42", "")

	assert.Equal(t, map[string]any{
		"userId":     float64(42),
		"username":   "user42",
		"secret":     "ABC",
		"qrCodeUrl":  uri,
		"qrCodeData": uri,
		"enabled":    false,
	}, env.Data)
}

func TestHTTP_QRCodeImage(t *testing.T) {
	rec, _ := do(t, newServer(&fakeUC{}), http.MethodGet, "/api/v1/otp/qr-code.png?user_id=42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String())

	rec, env := do(t, newServer(&fakeUC{err: goerror.NewOTP(goerror.KindDisabled)}), http.MethodGet, "/api/v1/otp/qr-code.png?user_id=42", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "1005", env.Code)

	rec, env = do(t, newServer(&fakeUC{}), http.MethodGet, "/api/v1/otp/qr-code.png?user_id=x", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "3001", env.Code)
}
