// Package payments wraps the external payment gateway. The gateway itself is
// opaque: this client only starts a charge and hands back the gateway's
// reference; settlement arrives later through the webhook callback.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/luisvillanueva/driveshare-backend/pkg/config"
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("payments gateway url is required")
	errAPIKeyRequired  = errors.New("payments gateway api key is required")
)

// ChargeRequest asks the gateway to collect an amount from an account.
type ChargeRequest struct {
	AccountRef  string `json:"account_ref"`
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference"`
}

// ChargeResult is the gateway's synchronous answer: a redirect for the payer
// and the gateway-side transaction reference.
type ChargeResult struct {
	ExternalRef string `json:"external_ref"`
	RedirectURL string `json:"redirect_url"`
}

// Capturer is the surface consumed by wallet flows.
type Capturer interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// Client talks to the configured payment gateway over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient validates the gateway configuration once at startup.
func NewClient(ctx context.Context, cfg config.PaymentsConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.GatewayBaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.GatewayAPIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	if logg != nil {
		logg.Info(ctx, "payments gateway client initialized")
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}, nil
}

func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode charge request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build charge request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment gateway")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("payment gateway returned %d: %s", resp.StatusCode, string(snippet)))
	}

	var result ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}
	if result.ExternalRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway response missing external reference")
	}
	return &result, nil
}
