package esign

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/envelopes" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req EnvelopeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.SignerEmail != "pat@client.test" {
			t.Errorf("unexpected signer email %q", req.SignerEmail)
		}
		json.NewEncoder(w).Encode(map[string]string{"envelope_id": "env-42"})
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1")
	id, err := c.CreateEnvelope(context.Background(), EnvelopeRequest{
		Title:       "Brand Services Agreement",
		DocumentURL: "https://blob.test/contract.pdf",
		SignerName:  "Pat Client",
		SignerEmail: "pat@client.test",
	})
	if err != nil {
		t.Fatalf("CreateEnvelope failed: %v", err)
	}
	if id != "env-42" {
		t.Errorf("expected env-42, got %q", id)
	}
}

func TestCreateEnvelopeValidation(t *testing.T) {
	c := New("https://api.test", "key-1")
	_, err := c.CreateEnvelope(context.Background(), EnvelopeRequest{Title: "no doc"})
	if err == nil {
		t.Error("expected error for missing document URL")
	}

	unconfigured := New("", "")
	_, err = unconfigured.CreateEnvelope(context.Background(), EnvelopeRequest{
		DocumentURL: "https://blob.test/c.pdf",
		SignerEmail: "a@b.test",
	})
	if err == nil {
		t.Error("expected error from unconfigured client")
	}
}

func TestVerifyWebhook(t *testing.T) {
	secret := "whsec-1"
	body := []byte(`{"envelope_id": "env-42", "signer_name": "Pat Client"}`)

	headers := http.Header{}
	headers.Set("X-Signature", Sign(body, secret))
	headers.Set("X-Event-Id", "evt-1")
	headers.Set("X-Event-Type", EventCompleted)

	ev, err := VerifyWebhook(headers, body, secret)
	if err != nil {
		t.Fatalf("VerifyWebhook failed: %v", err)
	}
	if ev.ID != "evt-1" || ev.Type != EventCompleted || ev.EnvelopeID != "env-42" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.SignerName != "Pat Client" {
		t.Errorf("unexpected signer %q", ev.SignerName)
	}
}

func TestVerifyWebhookBadSignature(t *testing.T) {
	body := []byte(`{"envelope_id": "env-42"}`)

	headers := http.Header{}
	headers.Set("X-Signature", Sign(body, "other-secret"))
	headers.Set("X-Event-Id", "evt-1")

	_, err := VerifyWebhook(headers, body, "whsec-1")
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyWebhookMissingSignature(t *testing.T) {
	_, err := VerifyWebhook(http.Header{}, []byte(`{}`), "whsec-1")
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyWebhookNotHex(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-Signature", "not-hex!!")
	_, err := VerifyWebhook(headers, []byte(`{}`), "whsec-1")
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyWebhookMissingIDs(t *testing.T) {
	secret := "whsec-1"
	body := []byte(`{"signer_name": "Pat"}`)
	headers := http.Header{}
	headers.Set("X-Signature", Sign(body, secret))

	if _, err := VerifyWebhook(headers, body, secret); err == nil {
		t.Error("expected error for missing envelope id")
	}
}
