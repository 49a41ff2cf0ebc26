// Package midtrans adapts a Midtrans Snap-style payment provider into the
// payment.Gateway port.
package midtrans

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/payment"
)

// startTimeLayout is the provider's expected expiry start_time format.
const startTimeLayout = "2006-01-02 15:04:05 -0700"

const maxResponseBytes = 1 << 20

var _ payment.Gateway = (*Client)(nil)

// Config holds the Snap endpoint, credentials, and static session settings.
type Config struct {
	// BaseURL of the Snap API, e.g. https://app.sandbox.midtrans.com.
	BaseURL string
	// ServerKey authenticates via HTTP basic auth (key as username).
	ServerKey string
	// ExpiryDuration and ExpiryUnit bound how long the hosted payment page
	// stays open, e.g. 1 "day".
	ExpiryDuration int
	ExpiryUnit     string
	// Channels lists the enabled payment channels.
	Channels []string
}

// Client is an HTTP client for creating Snap transactions.
type Client struct {
	httpClient *http.Client
	cfg        Config
	now        func() time.Time
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cfg: cfg,
		now: time.Now,
	}
}

type snapRequest struct {
	TransactionDetails snapTransaction `json:"transaction_details"`
	CustomerDetails    snapCustomer    `json:"customer_details"`
	Expiry             snapExpiry      `json:"expiry"`
	EnabledPayments    []string        `json:"enable_payments,omitempty"`
}

type snapTransaction struct {
	OrderID     string  `json:"order_id"`
	GrossAmount float64 `json:"gross_amount"`
}

type snapCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type snapExpiry struct {
	StartTime string `json:"start_time"`
	Unit      string `json:"unit"`
	Duration  int    `json:"duration"`
}

type snapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Open creates a payment session for a committed order. The order code is the
// provider-side transaction id, so a retry for the same order resumes the
// existing transaction instead of opening a conflicting one.
func (c *Client) Open(ctx context.Context, o *order.Order) (*payment.Session, error) {
	reqBody := snapRequest{
		TransactionDetails: snapTransaction{
			OrderID:     o.Code,
			GrossAmount: o.GrandTotal.InexactFloat64(),
		},
		CustomerDetails: snapCustomer{
			FirstName: o.Customer.FirstName,
			LastName:  o.Customer.LastName,
			Email:     o.Customer.Email,
			Phone:     o.Customer.Phone,
		},
		Expiry: snapExpiry{
			StartTime: c.now().Format(startTimeLayout),
			Unit:      c.cfg.ExpiryUnit,
			Duration:  c.cfg.ExpiryDuration,
		},
		EnabledPayments: c.cfg.Channels,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snap request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build snap request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.ServerKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "snap request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read snap response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.Errorf("snap returned status %d: %s", resp.StatusCode, truncate(respBody, 256))
	}

	var parsed snapResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errors.Wrap(err, "parse snap response")
	}
	if parsed.Token == "" || parsed.RedirectURL == "" {
		return nil, errors.New("snap response missing token or redirect_url")
	}

	return &payment.Session{
		Token:       parsed.Token,
		RedirectURL: parsed.RedirectURL,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
