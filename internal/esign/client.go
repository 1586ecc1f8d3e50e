// Package esign talks to the hosted e-signature provider: envelope creation
// on the way out, HMAC-verified status webhooks on the way in.
package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client calls the e-signature provider API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a provider client. An empty baseURL leaves it unconfigured.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the provider is set up.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// EnvelopeRequest describes a document to send for signature.
type EnvelopeRequest struct {
	Title       string `json:"title"`
	DocumentURL string `json:"document_url"`
	SignerName  string `json:"signer_name"`
	SignerEmail string `json:"signer_email"`
	CallbackURL string `json:"callback_url"`
}

// CreateEnvelope sends a document out for signature and returns the
// provider's envelope ID.
func (c *Client) CreateEnvelope(ctx context.Context, req EnvelopeRequest) (string, error) {
	if !c.Configured() {
		return "", errors.New("e-signature provider not configured")
	}
	if req.DocumentURL == "" || req.SignerEmail == "" {
		return "", errors.New("document URL and signer email are required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal envelope request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/envelopes", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build envelope request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("create envelope: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("e-signature provider returned %d", resp.StatusCode)
	}

	var out struct {
		EnvelopeID string `json:"envelope_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode envelope response: %w", err)
	}
	if out.EnvelopeID == "" {
		return "", errors.New("provider returned empty envelope id")
	}
	return out.EnvelopeID, nil
}

// VoidEnvelope cancels an envelope that has not completed yet.
func (c *Client) VoidEnvelope(ctx context.Context, envelopeID string) error {
	if !c.Configured() {
		return errors.New("e-signature provider not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/envelopes/%s/void", c.baseURL, envelopeID), nil)
	if err != nil {
		return fmt.Errorf("build void request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("void envelope: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("e-signature provider returned %d", resp.StatusCode)
	}
	return nil
}
