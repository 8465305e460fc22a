package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"partsgate/config"
	domainerrors "partsgate/internal/domain/errors"
	"partsgate/internal/domain/service"
	"partsgate/internal/errors"

	"go.uber.org/fx"
)

const fallbackErrorMessage = "something went wrong, please try again"

// Client is the transport bridge. All components reach the backend through
// it; it is the single place where failures are classified and where the
// refresh-and-retry protocol runs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     service.TokenSource
	notifier   service.Notifier
	navigator  service.Navigator
	logger     *slog.Logger
}

// ClientParams holds dependencies for the Client, injected by Fx.
type ClientParams struct {
	fx.In

	Config    *config.Config
	Tokens    service.TokenSource
	Notifier  service.Notifier
	Navigator service.Navigator
	Logger    *slog.Logger
}

// NewClient is the constructor for the transport bridge.
func NewClient(params ClientParams) (*Client, error) {
	base, err := url.JoinPath(params.Config.Backend.BaseURL, params.Config.Backend.BasePath)
	if err != nil {
		return nil, errors.Wrap(err, "join backend base url")
	}

	return &Client{
		httpClient: &http.Client{Timeout: params.Config.Backend.Timeout},
		baseURL:    base,
		tokens:     params.Tokens,
		notifier:   params.Notifier,
		navigator:  params.Navigator,
		logger:     params.Logger,
	}, nil
}

// Do sends a request with bearer credentials attached and classifies the
// outcome. A 401 on a non-silent request triggers one refresh-and-retry
// cycle; the retry flag is per call, never shared, so concurrent requests
// each retry at most once while the refresh itself is coalesced inside the
// token source.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, sendErr := c.send(ctx, req)
	if sendErr != nil {
		return nil, c.fail(ctx, req, sendErr)
	}

	if resp.Status == http.StatusUnauthorized && !req.Silent {
		return c.refreshAndRetry(ctx, req)
	}

	return c.classify(ctx, req, resp)
}

// refreshAndRetry runs the recovery protocol for a first 401: one coalesced
// refresh, then exactly one resubmission. A failed refresh or a second 401
// fails closed: credentials are cleared and the user is routed back to the
// login surface with the expired marker.
func (c *Client) refreshAndRetry(ctx context.Context, req *Request) (*Response, error) {
	if err := c.tokens.Refresh(ctx); err != nil {
		c.logger.Warn("token refresh failed, abandoning retry", slog.Any("error", err))
		c.navigator.ToLogin(ctx, true)

		return nil, domainerrors.NewAPIError(
			http.StatusUnauthorized, domainerrors.ClassSessionRevoked, "SESSION_REVOKED", "session expired",
		).WrapMessage("refresh failed")
	}

	resp, sendErr := c.send(ctx, req)
	if sendErr != nil {
		return nil, c.fail(ctx, req, sendErr)
	}

	if resp.Status == http.StatusUnauthorized {
		if err := c.tokens.Invalidate(ctx); err != nil {
			c.logger.Error("failed to clear credentials after terminal 401", slog.Any("error", err))
		}
		c.navigator.ToLogin(ctx, true)

		return nil, domainerrors.NewAPIError(
			http.StatusUnauthorized, domainerrors.ClassSessionRevoked, "SESSION_REVOKED", "session expired",
		).WrapMessage("request unauthorized after refresh")
	}

	return c.classify(ctx, req, resp)
}

// classify maps a completed response onto the error taxonomy, raising at
// most one notification. Success responses never notify.
func (c *Client) classify(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	if resp.Status < http.StatusBadRequest {
		return resp, nil
	}

	var backend backendError
	_ = json.Unmarshal(resp.Body, &backend) // Absent or malformed envelopes fall back below.

	message := backend.text()
	if message == "" {
		message = fallbackErrorMessage
	}

	switch {
	case resp.Status == http.StatusUnauthorized:
		// Reachable only for silent requests; the caller classifies
		// revocation-vs-transience itself.
		return nil, errors.WithStack(domainerrors.NewAPIError(
			resp.Status, domainerrors.ClassSessionRevoked, backend.Code, message,
		))

	case resp.Status == http.StatusForbidden:
		if !req.Silent {
			c.notifier.Error(ctx, "access denied")
		}

		return nil, errors.WithStack(domainerrors.NewAPIError(
			resp.Status, domainerrors.ClassAccessDenied, backend.Code, message,
		))

	case resp.Status == http.StatusBadRequest:
		// Domain validation (insufficient stock, bad quantity): the generic
		// notification is suppressed so the calling component can show a
		// precise message inline.
		return nil, errors.WithStack(domainerrors.NewAPIError(
			resp.Status, domainerrors.ClassDomainValidation, backend.Code, message,
		))

	default:
		if !req.Silent {
			c.notifier.Error(ctx, message)
		}

		return nil, errors.WithStack(domainerrors.NewAPIError(
			resp.Status, domainerrors.ClassTransient, backend.Code, message,
		))
	}
}

// fail handles network-level errors: no response was received at all.
func (c *Client) fail(ctx context.Context, req *Request, sendErr error) error {
	c.logger.Warn("backend call failed",
		slog.String("method", req.Method), slog.String("path", req.Path), slog.Any("error", sendErr))

	if !req.Silent {
		c.notifier.Error(ctx, fallbackErrorMessage)
	}

	return errors.Wrap(domainerrors.NewAPIError(
		0, domainerrors.ClassTransient, "NETWORK", "backend unreachable",
	), sendErr.Error())
}

// send performs one HTTP exchange. The bearer header is attached only when
// the token source holds a real credential; absent and sentinel values
// ("undefined", "null") send the request unauthenticated.
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, req.Method, c.baseURL+"/"+strings.TrimPrefix(req.Path, "/"), body,
	)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if token := c.tokens.AccessToken(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	return &Response{Status: httpResp.StatusCode, Body: respBody}, nil
}
