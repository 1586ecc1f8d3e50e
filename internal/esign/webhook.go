package esign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const (
	signatureHeader = "X-Signature"
	eventIDHeader   = "X-Event-Id"
	eventTypeHeader = "X-Event-Type"
)

// Envelope status events the provider sends.
const (
	EventCompleted = "envelope.completed"
	EventDeclined  = "envelope.declined"
	EventVoided    = "envelope.voided"
)

// ErrBadSignature means the webhook body failed HMAC verification.
var ErrBadSignature = errors.New("invalid webhook signature")

// WebhookEvent is one verified provider callback.
type WebhookEvent struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	EnvelopeID string `json:"envelope_id"`
	SignerName string `json:"signer_name"`
}

// VerifyWebhook checks the hex HMAC-SHA256 signature over the raw body and
// parses the event. Event ID and type come from headers, with the body as
// fallback.
func VerifyWebhook(headers http.Header, rawBody []byte, secret string) (WebhookEvent, error) {
	if strings.TrimSpace(secret) == "" {
		return WebhookEvent{}, errors.New("webhook secret is empty")
	}

	sigHex := strings.TrimSpace(headers.Get(signatureHeader))
	if sigHex == "" {
		return WebhookEvent{}, ErrBadSignature
	}
	providedSig, err := hex.DecodeString(sigHex)
	if err != nil {
		return WebhookEvent{}, ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	if !hmac.Equal(mac.Sum(nil), providedSig) {
		return WebhookEvent{}, ErrBadSignature
	}

	var ev WebhookEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return WebhookEvent{}, errors.New("malformed webhook body")
	}

	if id := strings.TrimSpace(headers.Get(eventIDHeader)); id != "" {
		ev.ID = id
	}
	if typ := strings.TrimSpace(headers.Get(eventTypeHeader)); typ != "" {
		ev.Type = typ
	}
	if ev.ID == "" || ev.EnvelopeID == "" {
		return WebhookEvent{}, errors.New("webhook missing event or envelope id")
	}
	return ev, nil
}

// Sign computes the hex signature for a body. Used by tests and local tools.
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
