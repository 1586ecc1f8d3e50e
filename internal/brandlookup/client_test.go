package brandlookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/brands/acme.test" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Acme",
			"domain": "acme.test",
			"description": "Makers of everything",
			"logos": [{"url": "https://cdn.test/acme.svg", "type": "icon", "theme": "dark", "format": "svg"}],
			"colors": [{"hex": "#ff5500", "type": "primary"}],
			"fonts": [{"name": "Inter", "type": "heading", "origin": "google"}]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1")
	profile, err := c.Lookup(context.Background(), "acme.test")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if profile.Name != "Acme" {
		t.Errorf("expected name Acme, got %q", profile.Name)
	}
	if len(profile.Logos) != 1 || profile.Logos[0].Kind != "icon" {
		t.Errorf("unexpected logos %+v", profile.Logos)
	}
	if len(profile.Colors) != 1 || profile.Colors[0].Hex != "#ff5500" {
		t.Errorf("unexpected colors %+v", profile.Colors)
	}
	if len(profile.Fonts) != 1 || profile.Fonts[0].Family != "Inter" {
		t.Errorf("unexpected fonts %+v", profile.Fonts)
	}
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1")
	_, err := c.Lookup(context.Background(), "unknown.test")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1")
	if _, err := c.Lookup(context.Background(), "acme.test"); err == nil {
		t.Error("expected error on 502")
	}
}

func TestLookupUnconfigured(t *testing.T) {
	c := New("", "")
	if c.Configured() {
		t.Error("empty client should not report configured")
	}
	if _, err := c.Lookup(context.Background(), "acme.test"); err == nil {
		t.Error("expected error from unconfigured client")
	}
}

func TestFetchAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()

	c := New("https://api.test", "key-1")
	body, contentType, err := c.FetchAsset(context.Background(), srv.URL+"/logo.svg")
	if err != nil {
		t.Fatalf("FetchAsset failed: %v", err)
	}
	defer body.Close()

	if contentType != "image/svg+xml" {
		t.Errorf("unexpected content type %q", contentType)
	}
}
