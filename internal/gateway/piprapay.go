package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

const apiKeyHeader = "mh-piprapay-api-key"

// ChargeMetadata travels with the charge to the gateway and comes back in the
// verification response. InvoiceID is the only field PipraPay echoes back.
type ChargeMetadata struct {
	InvoiceID string `json:"invoiceid"`
}

// ChargeRequest is the create-charge payload in PipraPay's wire format.
type ChargeRequest struct {
	FullName    string         `json:"full_name"`
	EmailMobile string         `json:"email_mobile"`
	Amount      string         `json:"amount"`
	Currency    string         `json:"currency"`
	Metadata    ChargeMetadata `json:"metadata"`
	RedirectURL string         `json:"redirect_url"`
	CancelURL   string         `json:"cancel_url"`
	WebhookURL  string         `json:"webhook_url"`
	ReturnType  string         `json:"return_type"`
}

// Decimal is a decimal amount carried as a string. PipraPay sends amounts as
// either JSON strings or bare numbers depending on the endpoint.
type Decimal string

func (d *Decimal) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Decimal(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = Decimal(s)
	return nil
}

// Verification is the gateway's authoritative view of a charge. Its fields,
// not the inbound IPN's, are what the adapter trusts when applying funds.
type Verification struct {
	Status        string         `json:"status"`
	TransactionID string         `json:"transaction_id"`
	Amount        Decimal        `json:"amount"`
	PaymentMethod string         `json:"payment_method"`
	Metadata      ChargeMetadata `json:"metadata"`
}

// Client calls the PipraPay REST API. Every call is a single attempt with the
// transport's default timeout; retrying failed deliveries is the gateway's
// job, not ours.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, http: http.DefaultClient}, nil
}

// CreateCharge registers a hosted-checkout charge and returns the checkout
// URL the payer's browser should be sent to.
func (c *Client) CreateCharge(ctx context.Context, charge ChargeRequest) (string, error) {
	var resp struct {
		PPURL   string `json:"pp_url"`
		Message string `json:"message"`
	}
	if err := c.post(ctx, "create-charge", "/api/create-charge", charge, &resp); err != nil {
		return "", err
	}
	if resp.PPURL == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown"
		}
		return "", &GatewayError{Op: "create-charge", Message: "failed to create charge: " + msg}
	}
	return resp.PPURL, nil
}

// VerifyPayment fetches the gateway's view of the charge identified by ppID.
func (c *Client) VerifyPayment(ctx context.Context, ppID string) (*Verification, error) {
	var resp Verification
	if err := c.post(ctx, "verify-payments", "/api/verify-payments", map[string]string{"pp_id": ppID}, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "" {
		return nil, &GatewayError{Op: "verify-payments", Message: "invalid verification response"}
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ConnectionError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+path, bytes.NewReader(payload))
	if err != nil {
		return &ConnectionError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &ConnectionError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectionError{Op: op, Err: err}
	}
	// An empty body is the gateway answering with nothing; the caller treats
	// the zero value as a malformed success response.
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ConnectionError{Op: op, Err: err}
	}
	return nil
}
