package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

const msgSuccess = "Operation successful"

// Envelope is the body of every JSON response.
//
// Code is "0000" on success and a goerror.Kind wire code otherwise.
// Timestamp is in Unix milliseconds.
type Envelope struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

type responder struct {
	clock clock.Clocker
}

func (rs responder) write(ctx context.Context, w http.ResponseWriter, status int, code, msg string, data any) {
	writeJSON(w, Envelope{
		Code:      code,
		Message:   msg,
		Data:      data,
		Timestamp: rs.clock.Now().UnixMilli(),
		RequestID: instrument.GetCorrelationID(ctx),
	}, status)
}

func (rs responder) kind(ctx context.Context, w http.ResponseWriter, status int, kind goerror.Kind, msg string) {
	if msg == "" {
		msg = kind.Message()
	}
	rs.write(ctx, w, status, kind.Code(), msg, nil)
}

func (rs responder) fail(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		rs.kind(ctx, w, http.StatusInternalServerError, goerror.KindSystemError, "")
		return
	}

	var data any
	var errValidate validator.V10ValidationError
	if errors.As(err, &errValidate) {
		data = errValidate.Values()
	} else if len(gerr.Fields()) > 0 {
		data = gerr.Fields()
	}

	msg := gerr.Msg()
	if gerr.Type() == goerror.TypeServer {
		msg = gerr.Kind().Message()
	}

	rs.write(ctx, w, gerr.StatusCode(), gerr.Kind().Code(), msg, data)
}

func (rs responder) ok(ctx context.Context, w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}

	msg := msgSuccess
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
	}

	rs.write(ctx, w, code, goerror.CodeSuccess, msg, resp)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
