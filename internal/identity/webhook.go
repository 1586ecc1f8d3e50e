// Package identity verifies and parses webhooks from the hosted identity
// provider that mirrors user accounts into local memberships.
package identity

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

// Event types the provider sends.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// ErrBadSignature means the webhook body failed HMAC verification.
var ErrBadSignature = errors.New("invalid webhook signature")

// UserData is the payload of a user event.
type UserData struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	OrgSlug    string `json:"org_slug"`
}

// Event is one verified identity-provider callback.
type Event struct {
	ID   string   `json:"id"`
	Type string   `json:"type"`
	Data UserData `json:"data"`
}

// Verify checks the hex HMAC-SHA256 signature over the raw body and parses
// the event.
func Verify(headers http.Header, rawBody []byte, secret string) (Event, error) {
	if strings.TrimSpace(secret) == "" {
		return Event{}, errors.New("webhook secret is empty")
	}

	sigHex := strings.TrimSpace(headers.Get(signatureHeader))
	if sigHex == "" {
		return Event{}, ErrBadSignature
	}
	providedSig, err := hex.DecodeString(sigHex)
	if err != nil {
		return Event{}, ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	if !hmac.Equal(mac.Sum(nil), providedSig) {
		return Event{}, ErrBadSignature
	}

	var ev Event
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return Event{}, errors.New("malformed webhook body")
	}

	if id := strings.TrimSpace(headers.Get(eventIDHeader)); id != "" {
		ev.ID = id
	}
	if typ := strings.TrimSpace(headers.Get(eventTypeHeader)); typ != "" {
		ev.Type = typ
	}
	if ev.ID == "" {
		return Event{}, errors.New("webhook missing event id")
	}
	if ev.Data.ExternalID == "" {
		return Event{}, errors.New("webhook missing external user id")
	}
	return ev, nil
}

// Sign computes the hex signature for a body. Used by tests and local tools.
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
