package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emblem/api/internal/esign"
	"emblem/api/internal/identity"
	"emblem/api/internal/store"
)

func postWebhook(handler http.Handler, path string, body []byte, sign func([]byte) string, eventID, eventType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	if sign != nil {
		req.Header.Set("X-Signature", sign(body))
	}
	req.Header.Set("X-Event-Id", eventID)
	req.Header.Set("X-Event-Type", eventType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestESignWebhookCompletesContract(t *testing.T) {
	var updatedStatus string
	var updatedAt *time.Time
	fs := &fakeStore{
		getContractByEnvelopeFn: func(_ context.Context, envelopeID string) (store.Contract, error) {
			return store.Contract{ID: "ctr_1", OrgID: "org_1", EnvelopeID: envelopeID, Title: "Retainer", Status: "sent", CreatedBy: "usr_1", SignerName: "Pat Signer"}, nil
		},
		updateContractStatusFn: func(_ context.Context, _, status string, completedAt *time.Time) error {
			updatedStatus = status
			updatedAt = completedAt
			return nil
		},
	}
	handler := NewHTTPServer(newTestService(fs), "*").Handler()

	body := []byte(`{"envelope_id":"env-42"}`)
	rec := postWebhook(handler, "/api/webhooks/esign", body, func(b []byte) string {
		return esign.Sign(b, "esign-secret")
	}, "evt-1", esign.EventCompleted)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status %d: %s", rec.Code, rec.Body.String())
	}
	if updatedStatus != "completed" || updatedAt == nil {
		t.Fatalf("expected completed with timestamp, got %q %v", updatedStatus, updatedAt)
	}
}

func TestESignWebhookRejectsBadSignature(t *testing.T) {
	fs := &fakeStore{}
	handler := NewHTTPServer(newTestService(fs), "*").Handler()

	body := []byte(`{"envelope_id":"env-42"}`)
	rec := postWebhook(handler, "/api/webhooks/esign", body, func(b []byte) string {
		return esign.Sign(b, "wrong-secret")
	}, "evt-1", esign.EventCompleted)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = postWebhook(handler, "/api/webhooks/esign", body, nil, "evt-1", esign.EventCompleted)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without signature, got %d", rec.Code)
	}
}

func TestESignWebhookReplayIsIgnored(t *testing.T) {
	updates := 0
	fs := &fakeStore{
		webhookEventSeenFn: func(_ context.Context, provider, eventID string) (bool, error) {
			if provider != "esign" || eventID != "evt-1" {
				t.Fatalf("unexpected event key %s/%s", provider, eventID)
			}
			return true, nil // already processed
		},
		updateContractStatusFn: func(context.Context, string, string, *time.Time) error {
			updates++
			return nil
		},
	}
	handler := NewHTTPServer(newTestService(fs), "*").Handler()

	body := []byte(`{"envelope_id":"env-42"}`)
	rec := postWebhook(handler, "/api/webhooks/esign", body, func(b []byte) string {
		return esign.Sign(b, "esign-secret")
	}, "evt-1", esign.EventCompleted)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay should still ack, got %d", rec.Code)
	}
	if updates != 0 {
		t.Fatal("replayed event must not touch the contract")
	}
}

func TestESignWebhookRetryAfterTransientFailure(t *testing.T) {
	marked := map[string]bool{}
	status := "sent"
	attempts := 0
	fs := &fakeStore{
		webhookEventSeenFn: func(_ context.Context, provider, eventID string) (bool, error) {
			return marked[provider+"/"+eventID], nil
		},
		markWebhookEventFn: func(_ context.Context, provider, eventID string) error {
			marked[provider+"/"+eventID] = true
			return nil
		},
		getContractByEnvelopeFn: func(_ context.Context, envelopeID string) (store.Contract, error) {
			return store.Contract{ID: "ctr_1", OrgID: "org_1", EnvelopeID: envelopeID, Title: "Retainer", Status: status, CreatedBy: "usr_1"}, nil
		},
		updateContractStatusFn: func(_ context.Context, _, next string, _ *time.Time) error {
			attempts++
			if attempts == 1 {
				return errors.New("connection reset")
			}
			status = next
			return nil
		},
	}
	handler := NewHTTPServer(newTestService(fs), "*").Handler()

	body := []byte(`{"envelope_id":"env-42"}`)
	sign := func(b []byte) string { return esign.Sign(b, "esign-secret") }

	// First delivery hits a transient store failure; the provider gets a 5xx
	// and the event stays unmarked.
	rec := postWebhook(handler, "/api/webhooks/esign", body, sign, "evt-9", esign.EventCompleted)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on transient failure, got %d", rec.Code)
	}
	if marked["esign/evt-9"] {
		t.Fatal("failed event must not be marked processed")
	}

	// The provider retries the same event ID and it must apply this time.
	rec = postWebhook(handler, "/api/webhooks/esign", body, sign, "evt-9", esign.EventCompleted)
	if rec.Code != http.StatusOK {
		t.Fatalf("retry status %d: %s", rec.Code, rec.Body.String())
	}
	if status != "completed" {
		t.Fatalf("contract stuck at %q after retry", status)
	}
	if !marked["esign/evt-9"] {
		t.Fatal("successful retry must mark the event")
	}
}

func TestESignWebhookUnknownEnvelopeAcks(t *testing.T) {
	fs := &fakeStore{}
	handler := NewHTTPServer(newTestService(fs), "*").Handler()

	body := []byte(`{"envelope_id":"env-unknown"}`)
	rec := postWebhook(handler, "/api/webhooks/esign", body, func(b []byte) string {
		return esign.Sign(b, "esign-secret")
	}, "evt-2", esign.EventVoided)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown envelope should ack, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIdentityWebhookProvisionsUser(t *testing.T) {
	var created *store.User
	fs := &fakeStore{
		getOrganizationBySlugFn: func(_ context.Context, slug string) (store.Organization, error) {
			if slug != "acme" {
				t.Fatalf("unexpected slug %q", slug)
			}
			return store.Organization{ID: "org_1", Name: "Acme", Slug: slug}, nil
		},
		createUserFn: func(_ context.Context, user store.User) error {
			created = &user
			return nil
		},
	}
	handler := NewHTTPServer(newTestService(fs), "*").Handler()

	body := []byte(`{"data":{"external_id":"ext-7","email":"New@Acme.Test","name":"New Member","org_slug":"acme"}}`)
	rec := postWebhook(handler, "/api/webhooks/identity", body, func(b []byte) string {
		return identity.Sign(b, "identity-secret")
	}, "evt-3", identity.EventUserCreated)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status %d: %s", rec.Code, rec.Body.String())
	}
	if created == nil {
		t.Fatal("expected a user to be created")
	}
	if created.Email != "new@acme.test" || created.Role != "member" || created.ExternalID != "ext-7" {
		t.Fatalf("unexpected user %+v", created)
	}
	if !created.IsEmailVerified {
		t.Fatal("provisioned users arrive verified")
	}
}

func TestIdentityWebhookDeactivatesUser(t *testing.T) {
	deactivated := ""
	fs := &fakeStore{
		getOrganizationBySlugFn: func(_ context.Context, slug string) (store.Organization, error) {
			return store.Organization{ID: "org_1", Slug: slug}, nil
		},
		getUserByExternalIDFn: func(_ context.Context, orgID, externalID string) (store.User, error) {
			return store.User{ID: "usr_9", OrgID: orgID, ExternalID: externalID}, nil
		},
		deactivateUserFn: func(_ context.Context, _, userID string) error {
			deactivated = userID
			return nil
		},
	}
	handler := NewHTTPServer(newTestService(fs), "*").Handler()

	body := []byte(`{"data":{"external_id":"ext-7","org_slug":"acme"}}`)
	rec := postWebhook(handler, "/api/webhooks/identity", body, func(b []byte) string {
		return identity.Sign(b, "identity-secret")
	}, "evt-4", identity.EventUserDeleted)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status %d: %s", rec.Code, rec.Body.String())
	}
	if deactivated != "usr_9" {
		t.Fatalf("expected usr_9 deactivated, got %q", deactivated)
	}
}
