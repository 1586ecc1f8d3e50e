package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "*").Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status %d", rec.Code)
	}
}

func TestReadyReportsDatabaseFailure(t *testing.T) {
	fs := &fakeStore{
		pingFn: func(context.Context) error { return errors.New("connection refused") },
	}
	handler := NewHTTPServer(newTestService(fs), "*").Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	payload := decodeResponse(t, rec)
	if payload["status"] != "not_ready" {
		t.Fatalf("expected not_ready, got %v", payload["status"])
	}
}

func TestReadyOK(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "*").Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	fs := &fakeStore{getUserByIDFn: brandOrgUsers()}
	svc := newTestService(fs)
	handler := NewHTTPServer(svc, "*").Handler()

	rec := authedRequest(t, handler, svc, "usr_member", http.MethodGet, "/api/nothing-here")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := NewHTTPServer(newTestService(&fakeStore{}), "https://app.example.com").Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/brands", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "https://app.example.com" {
		t.Fatalf("unexpected allow-origin %q", origin)
	}
}
