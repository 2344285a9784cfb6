package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type uc interface {
	BeginEnrollment(ctx context.Context, in usecase.UserInput) (*usecase.EnrollOutput, error)
	Activate(ctx context.Context, in usecase.ActivateInput) (bool, error)
	Deactivate(ctx context.Context, in usecase.DeactivateInput) error
	Verify(ctx context.Context, in usecase.VerifyInput) (entity.VerificationOutcome, error)

	Status(ctx context.Context, in usecase.UserInput) (bool, error)
	Info(ctx context.Context, in usecase.UserInput) (*usecase.InfoOutput, error)
	Provisioning(ctx context.Context, in usecase.UserInput) (*usecase.ProvisioningOutput, error)
	QRCode(ctx context.Context, in usecase.UserInput) ([]byte, error)

	RemainingSeconds() int
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc, fail: r.Fail}

	r.POST("/api/v1/otp/enroll", end.Enroll)
	r.POST("/api/v1/otp/enable", end.Enable)
	r.POST("/api/v1/otp/disable", end.Disable)
	r.POST("/api/v1/otp/verify", end.Verify)

	r.GET("/api/v1/otp/status", end.Status)
	r.GET("/api/v1/otp/info", end.Info)
	r.GET("/api/v1/otp/qr-code", end.QRCodeData)
	r.GETRaw("/api/v1/otp/qr-code.png", http.HandlerFunc(end.QRCodeImage))
}
