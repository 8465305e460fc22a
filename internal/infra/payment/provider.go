// Package payment adapts the external payment provider's confirmation API
// to the domain's PaymentProvider interface. Everything behind the client
// secret is the provider's business; this adapter only relays the outcome.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"partsgate/config"
	domainerrors "partsgate/internal/domain/errors"
	"partsgate/internal/domain/service"
	"partsgate/internal/errors"

	"go.uber.org/fx"
)

// httpProvider confirms payments against the provider's REST API.
type httpProvider struct {
	httpClient *http.Client
	confirmURL string
	logger     *slog.Logger
}

// ProviderParams holds dependencies for the provider adapter, injected by Fx.
type ProviderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewProvider is the constructor for the HTTP payment provider adapter.
func NewProvider(params ProviderParams) (service.PaymentProvider, error) {
	confirmURL, err := url.JoinPath(params.Config.Provider.BaseURL, "v1/payment_intents/confirm")
	if err != nil {
		return nil, errors.Wrap(err, "join provider url")
	}

	return &httpProvider{
		httpClient: &http.Client{Timeout: params.Config.Provider.Timeout},
		confirmURL: confirmURL,
		logger:     params.Logger,
	}, nil
}

type confirmRequest struct {
	ClientSecret  string `json:"client_secret"`
	PaymentMethod string `json:"payment_method"`
}

type confirmResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Confirm submits the capture. Provider rejections (declined card, expired
// intent) come back as payment-class errors carrying the provider's own
// message, so the checkout flow can show it verbatim and stay retryable.
func (p *httpProvider) Confirm(ctx context.Context, clientSecret, paymentMethod string) (service.PaymentResult, error) {
	payload, err := json.Marshal(confirmRequest{ClientSecret: clientSecret, PaymentMethod: paymentMethod})
	if err != nil {
		return service.PaymentResult{}, errors.Wrap(err, "encode confirm request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.confirmURL, bytes.NewReader(payload))
	if err != nil {
		return service.PaymentResult{}, errors.Wrap(err, "build confirm request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return service.PaymentResult{}, errors.Wrap(domainerrors.NewAPIError(
			0, domainerrors.ClassPayment, "PROVIDER_UNREACHABLE", "payment provider unreachable",
		), err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return service.PaymentResult{}, errors.Wrap(err, "read confirm response")
	}

	var confirmation confirmResponse
	if err := json.Unmarshal(body, &confirmation); err != nil {
		return service.PaymentResult{}, errors.Wrap(err, "decode confirm response")
	}

	if resp.StatusCode != http.StatusOK || confirmation.Error != nil {
		message := "payment was not accepted"
		if confirmation.Error != nil && confirmation.Error.Message != "" {
			message = confirmation.Error.Message
		}
		p.logger.Info("payment capture rejected", slog.Int("status", resp.StatusCode))

		return service.PaymentResult{}, errors.WithStack(domainerrors.NewAPIError(
			resp.StatusCode, domainerrors.ClassPayment, "PAYMENT_DECLINED", message,
		))
	}

	return service.PaymentResult{IntentID: confirmation.ID, Status: confirmation.Status}, nil
}
