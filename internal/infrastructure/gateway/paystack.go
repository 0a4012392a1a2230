// Package gateway wraps the external payment processor. The ledger trusts
// only two things from it: a signed webhook and a server-side verify call.
// Amounts cross this boundary in minor units (kobo).
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domainerrors "campus-market.backend/internal/domain/errors"
)

// WebhookEventChargeSuccess is the only webhook event the ledger acts on.
const WebhookEventChargeSuccess = "charge.success"

// Metadata rides through the processor untouched and comes back on webhooks
// and verify calls. UserID ties the payment to the wallet to credit.
type Metadata struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

// InitializeData is the processor's response to starting a checkout session
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// TransactionData is the processor's view of a transaction. Amount is in
// minor units.
type TransactionData struct {
	Status    string   `json:"status"`
	Amount    int64    `json:"amount"`
	Reference string   `json:"reference"`
	Metadata  Metadata `json:"metadata"`
	PaidAt    string   `json:"paid_at"`
	Channel   string   `json:"channel"`
}

// WebhookEvent is the envelope the processor posts to the webhook endpoint
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  TransactionData `json:"data"`
}

// Client is the processor surface the usecases depend on
type Client interface {
	InitializeTransaction(ctx context.Context, email string, amountMinor int64, metadata Metadata) (*InitializeData, error)
	VerifyTransaction(ctx context.Context, reference string) (*TransactionData, error)
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// PaystackClient talks to the Paystack REST API
type PaystackClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewPaystackClient creates a gateway client
func NewPaystackClient(secretKey, baseURL string) *PaystackClient {
	return &PaystackClient{
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *PaystackClient) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrGatewayFailure, err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: malformed response", domainerrors.ErrGatewayFailure)
	}
	if resp.StatusCode >= 400 || !env.Status {
		return fmt.Errorf("%w: %s", domainerrors.ErrGatewayFailure, env.Message)
	}
	return json.Unmarshal(env.Data, out)
}

// InitializeTransaction starts a checkout session for a deposit
func (c *PaystackClient) InitializeTransaction(ctx context.Context, email string, amountMinor int64, metadata Metadata) (*InitializeData, error) {
	payload := map[string]interface{}{
		"email":    email,
		"amount":   amountMinor,
		"metadata": metadata,
	}
	var data InitializeData
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// VerifyTransaction fetches the processor's authoritative record for a
// reference
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*TransactionData, error) {
	var data TransactionData
	if err := c.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// VerifySignature checks the webhook HMAC: SHA-512 over the raw body, keyed
// with the secret, hex-encoded. Constant-time compare.
func VerifySignature(secretKey string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
