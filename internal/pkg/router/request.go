package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

// maxBodyBytes bounds every JSON body; the largest request is a few dozen bytes.
const maxBodyBytes = 64 << 10

// Request is what a Handler receives.
type Request struct {
	*http.Request
}

// GetQueryInt64 reads an optional integer query parameter. Absent or blank
// means 0; anything else that is not a base 10 int64 is a 422 naming key.
func (r *Request) GetQueryInt64(key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerror.NewInvalidInput(nil, key, key+" must be an integer")
	}
	return n, nil
}

// DecodeBody strictly decodes a single JSON value into dst. Unknown fields
// and trailing data are rejected as a malformed body.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}
	if !errors.Is(dec.Decode(new(json.RawMessage)), io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
