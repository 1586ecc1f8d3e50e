package export

import (
	"context"
	"fmt"
	"time"
)

// DataStore defines the interface for data access
type DataStore interface {
	GetBrandInfo(ctx context.Context, orgID, brandID string) (BrandInfo, error)
	ListBrandColors(ctx context.Context, brandID string) ([]ColorInfo, error)
	ListBrandFonts(ctx context.Context, brandID string) ([]FontInfo, error)
	ListBrandLogos(ctx context.Context, brandID string) ([]LogoInfo, error)
}

// Presigner resolves blob object keys to short-lived URLs headless Chrome
// can fetch while printing.
type Presigner interface {
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// BrandInfo holds basic brand metadata
type BrandInfo struct {
	ID          string
	Name        string
	Domain      string
	Description string
}

// ColorInfo holds one palette entry
type ColorInfo struct {
	Hex  string
	Kind string
	Name string
}

// FontInfo holds one typeface entry
type FontInfo struct {
	Family string
	Usage  string
	Source string
}

// LogoInfo holds one logo variant
type LogoInfo struct {
	ObjectKey string
	Kind      string
	Theme     string
	Format    string
}

// Service provides brand guide export functionality
type Service struct {
	store   DataStore
	presign Presigner
}

// NewService creates a new export service. presign may be nil; logos are then
// omitted from the guide.
func NewService(store DataStore, presign Presigner) *Service {
	return &Service{store: store, presign: presign}
}

// Export generates a brand guide in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	data, err := s.buildData(ctx, req)
	if err != nil {
		return nil, err
	}

	html, err := RenderBrandGuideHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch req.Format {
	case FormatPDF:
		return exportPDF(html, data.BrandName+" Brand Guide")
	case FormatDOCX:
		return exportDOCX(html, data.BrandName+" Brand Guide")
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}

func (s *Service) buildData(ctx context.Context, req Request) (TemplateData, error) {
	brand, err := s.store.GetBrandInfo(ctx, req.OrgID, req.BrandID)
	if err != nil {
		return TemplateData{}, fmt.Errorf("get brand: %w", err)
	}

	data := TemplateData{
		BrandName:   brand.Name,
		Domain:      brand.Domain,
		Description: brand.Description,
		GeneratedAt: time.Now(),
	}

	colors, err := s.store.ListBrandColors(ctx, brand.ID)
	if err != nil {
		return TemplateData{}, fmt.Errorf("list colors: %w", err)
	}
	for _, c := range colors {
		data.Colors = append(data.Colors, TemplateColor{Hex: c.Hex, Kind: c.Kind, Name: c.Name})
	}

	fonts, err := s.store.ListBrandFonts(ctx, brand.ID)
	if err != nil {
		return TemplateData{}, fmt.Errorf("list fonts: %w", err)
	}
	for _, f := range fonts {
		data.Fonts = append(data.Fonts, TemplateFont{Family: f.Family, Usage: f.Usage, Source: f.Source})
	}

	if s.presign != nil {
		logos, err := s.store.ListBrandLogos(ctx, brand.ID)
		if err != nil {
			return TemplateData{}, fmt.Errorf("list logos: %w", err)
		}
		for _, l := range logos {
			if l.ObjectKey == "" {
				continue
			}
			url, err := s.presign.PresignGet(ctx, l.ObjectKey, 10*time.Minute)
			if err != nil {
				// A missing logo should not sink the whole guide.
				continue
			}
			data.Logos = append(data.Logos, TemplateLogo{URL: url, Kind: l.Kind, Theme: l.Theme, Format: l.Format})
		}
	}

	return data, nil
}
