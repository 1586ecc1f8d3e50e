package designimport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/files/file-key-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Token"); got != "tok-1" {
			t.Errorf("unexpected token header %q", got)
		}
		w.Write([]byte(`{
			"document": {
				"children": [
					{
						"children": [
							{"id": "1:2", "name": "Card Front", "type": "FRAME", "absoluteBoundingBox": {"width": 1050, "height": 600}},
							{"id": "1:3", "name": "Stray Text", "type": "TEXT"},
							{"id": "1:4", "name": "Card Back", "type": "FRAME", "absoluteBoundingBox": {"width": 1050, "height": 600}}
						]
					}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	frames, err := c.ListFrames(context.Background(), "file-key-1")
	if err != nil {
		t.Fatalf("ListFrames failed: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].NodeID != "1:2" || frames[0].Name != "Card Front" {
		t.Errorf("unexpected first frame %+v", frames[0])
	}
	if frames[0].Width != 1050 {
		t.Errorf("expected width 1050, got %v", frames[0].Width)
	}
}

func TestRenderFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/file-key-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ids"); got != "1:2,1:4" {
			t.Errorf("unexpected ids %q", got)
		}
		w.Write([]byte(`{"err": "", "images": {"1:2": "https://cdn.test/a.png", "1:4": "https://cdn.test/b.png"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	images, err := c.RenderFrames(context.Background(), "file-key-1", []string{"1:2", "1:4"})
	if err != nil {
		t.Fatalf("RenderFrames failed: %v", err)
	}
	if images["1:2"] != "https://cdn.test/a.png" {
		t.Errorf("unexpected image map %+v", images)
	}
}

func TestRenderFramesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"err": "rate limited", "images": {}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	if _, err := c.RenderFrames(context.Background(), "file-key-1", []string{"1:2"}); err == nil {
		t.Error("expected error when provider reports err")
	}
}

func TestUnconfigured(t *testing.T) {
	c := New("", "")
	if c.Configured() {
		t.Error("empty client should not report configured")
	}
	if _, err := c.ListFrames(context.Background(), "file-key-1"); err == nil {
		t.Error("expected error from unconfigured client")
	}
	if _, err := c.RenderFrames(context.Background(), "file-key-1", []string{"1:2"}); err == nil {
		t.Error("expected error from unconfigured client")
	}
}
