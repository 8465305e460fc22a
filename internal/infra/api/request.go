// Package api implements the transport bridge to the marketplace backend:
// bearer credential attachment, error classification and notification, and
// the single-retry refresh protocol on authentication failure.
package api

import (
	"encoding/json"
	"net/http"

	"partsgate/internal/errors"
)

// Request describes one backend call. Path is joined onto the configured
// base URL and versioned base path.
type Request struct {
	Method string
	Path   string
	Body   any // Marshaled to JSON when non-nil.
	Header http.Header

	// Silent marks session-owned probes (identity check, login, refresh).
	// Silent requests never trigger the refresh-and-retry protocol, raise no
	// notifications and cause no redirects; the caller interprets the
	// classified error itself. This is what lets startup identity checks
	// fail gracefully.
	Silent bool
}

// Response is the body and status of a completed backend call. Do returns a
// Response only for 2xx statuses; everything else is surfaced as a
// classified error.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "decode backend response")
	}

	return nil
}

// backendError is the error envelope the backend attaches to non-2xx
// responses. Both shapes are seen in the wild.
type backendError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func (e backendError) text() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Error
}
