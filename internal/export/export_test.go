package export

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeGuideStore struct {
	brand  BrandInfo
	colors []ColorInfo
	fonts  []FontInfo
	logos  []LogoInfo
}

func (f *fakeGuideStore) GetBrandInfo(_ context.Context, _, _ string) (BrandInfo, error) {
	return f.brand, nil
}

func (f *fakeGuideStore) ListBrandColors(_ context.Context, _ string) ([]ColorInfo, error) {
	return f.colors, nil
}

func (f *fakeGuideStore) ListBrandFonts(_ context.Context, _ string) ([]FontInfo, error) {
	return f.fonts, nil
}

func (f *fakeGuideStore) ListBrandLogos(_ context.Context, _ string) ([]LogoInfo, error) {
	return f.logos, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blob.test/" + key, nil
}

func TestBuildData(t *testing.T) {
	fs := &fakeGuideStore{
		brand: BrandInfo{ID: "br-1", Name: "Acme", Domain: "acme.test", Description: "Makers of everything"},
		colors: []ColorInfo{
			{Hex: "#ff5500", Kind: "primary"},
			{Hex: "#222222", Kind: "secondary", Name: "Ink"},
		},
		fonts: []FontInfo{{Family: "Inter", Usage: "heading", Source: "google"}},
		logos: []LogoInfo{
			{ObjectKey: "org/brands/br-1/logos/lg-1.svg", Kind: "icon", Theme: "light", Format: "svg"},
			{ObjectKey: "", Kind: "wordmark", Theme: "dark", Format: "png"},
		},
	}
	svc := NewService(fs, fakePresigner{})

	data, err := svc.buildData(context.Background(), Request{OrgID: "org-1", BrandID: "br-1", Format: FormatPDF})
	if err != nil {
		t.Fatalf("buildData failed: %v", err)
	}

	if data.BrandName != "Acme" {
		t.Errorf("expected brand name Acme, got %q", data.BrandName)
	}
	if len(data.Colors) != 2 || data.Colors[1].Name != "Ink" {
		t.Errorf("unexpected colors %+v", data.Colors)
	}
	if len(data.Fonts) != 1 {
		t.Errorf("unexpected fonts %+v", data.Fonts)
	}
	// Keyless logo rows are skipped.
	if len(data.Logos) != 1 {
		t.Fatalf("expected 1 logo, got %d", len(data.Logos))
	}
	if !strings.HasPrefix(data.Logos[0].URL, "https://blob.test/") {
		t.Errorf("expected presigned URL, got %q", data.Logos[0].URL)
	}
}

func TestBuildDataWithoutPresigner(t *testing.T) {
	fs := &fakeGuideStore{
		brand: BrandInfo{ID: "br-1", Name: "Acme"},
		logos: []LogoInfo{{ObjectKey: "some/key.svg", Kind: "icon", Theme: "light", Format: "svg"}},
	}
	svc := NewService(fs, nil)

	data, err := svc.buildData(context.Background(), Request{OrgID: "org-1", BrandID: "br-1"})
	if err != nil {
		t.Fatalf("buildData failed: %v", err)
	}
	if len(data.Logos) != 0 {
		t.Errorf("expected no logos without presigner, got %d", len(data.Logos))
	}
}

func TestRenderBrandGuideHTML(t *testing.T) {
	data := TemplateData{
		BrandName:   "Acme",
		Domain:      "acme.test",
		Description: "Makers of everything",
		GeneratedAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Colors:      []TemplateColor{{Hex: "#ff5500", Kind: "primary"}},
		Fonts:       []TemplateFont{{Family: "Inter", Usage: "heading", Source: "google"}},
		Logos:       []TemplateLogo{{URL: "https://blob.test/logo.svg", Kind: "icon", Theme: "dark", Format: "svg"}},
	}

	html, err := RenderBrandGuideHTML(data)
	if err != nil {
		t.Fatalf("RenderBrandGuideHTML failed: %v", err)
	}

	for _, want := range []string{
		"Acme",
		"acme.test",
		"#ff5500",
		"Inter",
		"https://blob.test/logo.svg",
		"Mar 14, 2026",
		`class="logo dark"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered guide should contain %q", want)
		}
	}
}

func TestRenderEmptySections(t *testing.T) {
	html, err := RenderBrandGuideHTML(TemplateData{BrandName: "Bare", GeneratedAt: time.Now()})
	if err != nil {
		t.Fatalf("RenderBrandGuideHTML failed: %v", err)
	}
	if strings.Contains(html, "<h2>Colors</h2>") {
		t.Error("empty palette should not render a Colors section")
	}
	if strings.Contains(html, "<h2>Logos</h2>") {
		t.Error("empty logo set should not render a Logos section")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Acme Brand Guide", "Acme-Brand-Guide"},
		{"weird / name : here", "weird--name--here"},
		{"", "brand-guide"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	got := percentEncodeForDataURL("a b&c")
	if got != "a%20b%26c" {
		t.Errorf("unexpected encoding %q", got)
	}
}
