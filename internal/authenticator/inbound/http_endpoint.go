package inbound

import (
	"net/http"

	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

// HTTPEndpoint exposes the OTP lifecycle over JSON.
type HTTPEndpoint struct {
	uc   uc
	fail func(w http.ResponseWriter, req *http.Request, err error)
}

func (h *HTTPEndpoint) Enroll(r *router.Request) (any, error) {
	var req UserRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.BeginEnrollment(r.Context(), usecase.UserInput{UserID: req.UserID})
	if err != nil {
		return nil, err
	}

	return EnrollResponse{
		Secret:     resp.Secret,
		QRCodeURL:  resp.URI,
		QRCodeData: resp.URI,
	}, nil
}

// Enable answers a wrong code with enabled=false rather than an error.
func (h *HTTPEndpoint) Enable(r *router.Request) (any, error) {
	var req EnableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ok, err := h.uc.Activate(r.Context(), usecase.ActivateInput{
		UserID: req.UserID,
		Secret: req.Secret,
		Code:   req.Code,
	})
	if err != nil {
		return nil, err
	}

	return EnableResponse{Enabled: ok}, nil
}

func (h *HTTPEndpoint) Disable(r *router.Request) (any, error) {
	var req DisableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Deactivate(r.Context(), usecase.DeactivateInput{
		UserID: req.UserID,
		Code:   req.Code,
	}); err != nil {
		return nil, err
	}

	return DisableResponse{}, nil
}

func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		UserID: req.UserID,
		Code:   req.Code,
	})
	if err != nil {
		return nil, err
	}

	msg := "OTP verified"
	if !out.IsAccepted() {
		msg = out.Reason().Message()
	}

	return VerifyResponse{
		Valid:            out.IsAccepted(),
		Code:             out.Code(),
		Msg:              msg,
		RemainingSeconds: h.uc.RemainingSeconds(),
	}, nil
}

func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	userID, err := r.GetQueryInt64("user_id")
	if err != nil {
		return nil, err
	}

	enabled, err := h.uc.Status(r.Context(), usecase.UserInput{UserID: userID})
	if err != nil {
		return nil, err
	}

	return StatusResponse{
		UserID:           userID,
		Enabled:          enabled,
		RemainingSeconds: h.uc.RemainingSeconds(),
	}, nil
}

func (h *HTTPEndpoint) Info(r *router.Request) (any, error) {
	userID, err := r.GetQueryInt64("user_id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Info(r.Context(), usecase.UserInput{UserID: userID})
	if err != nil {
		return nil, err
	}

	return InfoResponse{
		UserID:    resp.UserID,
		Status:    resp.Status.String(),
		Enabled:   resp.Enabled,
		CreatedAt: resp.CreatedAt,
		UpdatedAt: resp.UpdatedAt,
		QRCodeURL: resp.URI,
	}, nil
}

func (h *HTTPEndpoint) QRCodeData(r *router.Request) (any, error) {
	userID, err := r.GetQueryInt64("user_id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Provisioning(r.Context(), usecase.UserInput{UserID: userID})
	if err != nil {
		return nil, err
	}

	return QRCodeDataResponse{
		UserID:     resp.UserID,
		Username:   resp.Username,
		Secret:     resp.Secret,
		QRCodeURL:  resp.URI,
		QRCodeData: resp.URI,
		Enabled:    resp.Enabled,
	}, nil
}

// QRCodeImage writes the PNG itself; failures still use the JSON envelope.
func (h *HTTPEndpoint) QRCodeImage(w http.ResponseWriter, req *http.Request) {
	r := &router.Request{Request: req}

	userID, err := r.GetQueryInt64("user_id")
	if err != nil {
		h.fail(w, req, err)
		return
	}

	png, err := h.uc.QRCode(req.Context(), usecase.UserInput{UserID: userID})
	if err != nil {
		h.fail(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
