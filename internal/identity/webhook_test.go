package identity

import (
	"errors"
	"net/http"
	"testing"
)

func TestVerify(t *testing.T) {
	secret := "idsec-1"
	body := []byte(`{"data": {"external_id": "idp_123", "email": "new@studio.test", "name": "New Member", "org_slug": "night-shift-studio"}}`)

	headers := http.Header{}
	headers.Set("X-Signature", Sign(body, secret))
	headers.Set("X-Event-Id", "evt-7")
	headers.Set("X-Event-Type", EventUserCreated)

	ev, err := Verify(headers, body, secret)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ev.ID != "evt-7" || ev.Type != EventUserCreated {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Data.ExternalID != "idp_123" || ev.Data.OrgSlug != "night-shift-studio" {
		t.Errorf("unexpected data %+v", ev.Data)
	}
}

func TestVerifyBodyFallback(t *testing.T) {
	secret := "idsec-1"
	body := []byte(`{"id": "evt-8", "type": "user.updated", "data": {"external_id": "idp_123", "email": "renamed@studio.test"}}`)

	headers := http.Header{}
	headers.Set("X-Signature", Sign(body, secret))

	ev, err := Verify(headers, body, secret)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ev.ID != "evt-8" || ev.Type != EventUserUpdated {
		t.Errorf("expected ids from body, got %+v", ev)
	}
}

func TestVerifyBadSignature(t *testing.T) {
	body := []byte(`{"data": {"external_id": "idp_123"}}`)

	headers := http.Header{}
	headers.Set("X-Signature", Sign(body, "other-secret"))
	headers.Set("X-Event-Id", "evt-9")

	_, err := Verify(headers, body, "idsec-1")
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyMissingSignature(t *testing.T) {
	_, err := Verify(http.Header{}, []byte(`{}`), "idsec-1")
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyMissingExternalID(t *testing.T) {
	secret := "idsec-1"
	body := []byte(`{"data": {"email": "no-id@studio.test"}}`)
	headers := http.Header{}
	headers.Set("X-Signature", Sign(body, secret))
	headers.Set("X-Event-Id", "evt-10")

	if _, err := Verify(headers, body, secret); err == nil {
		t.Error("expected error for missing external id")
	}
}

func TestVerifyEmptySecret(t *testing.T) {
	if _, err := Verify(http.Header{}, []byte(`{}`), ""); err == nil {
		t.Error("expected error for empty secret")
	}
}
