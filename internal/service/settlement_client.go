package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// settlementPayload is the JSON body posted to the settlement endpoint.
type settlementPayload struct {
	Destination string `json:"destination"`
	Amount      uint64 `json:"amount"`
	Timestamp   int64  `json:"timestamp"`
}

// SettlementClient implements domain.Transferer by posting HMAC-SHA256
// signed transfer orders to the configured settlement endpoint. Any transport
// error or non-2xx response is a transfer failure; the ledger rolls back.
type SettlementClient struct {
	endpoint   string
	secret     []byte
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewSettlementClient creates a new SettlementClient.
func NewSettlementClient(endpoint, secret string, httpClient HTTPClient, log zerolog.Logger) *SettlementClient {
	return &SettlementClient{
		endpoint:   endpoint,
		secret:     []byte(secret),
		httpClient: httpClient,
		log:        log,
	}
}

// Transfer sends amount to destination via the settlement endpoint.
func (c *SettlementClient) Transfer(ctx context.Context, destination uuid.UUID, amount uint64) error {
	payload := settlementPayload{
		Destination: destination.String(),
		Amount:      amount,
		Timestamp:   time.Now().Unix(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal settlement payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", c.sign(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post settlement order: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("destination", destination.String()).
			Uint64("amount", amount).
			Msg("settlement endpoint rejected transfer")
		return fmt.Errorf("settlement endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

// sign computes the hex-encoded HMAC-SHA256 of the request body.
func (c *SettlementClient) sign(body []byte) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
