package main

import (
	"context"

	"emblem/api/internal/export"
	"emblem/api/internal/store"
)

// guideStore adapts the Postgres store to the export service's view of
// brand data.
type guideStore struct {
	store *store.PostgresStore
}

func (g *guideStore) GetBrandInfo(ctx context.Context, orgID, brandID string) (export.BrandInfo, error) {
	brand, err := g.store.GetBrand(ctx, orgID, brandID)
	if err != nil {
		return export.BrandInfo{}, err
	}
	return export.BrandInfo{
		ID:          brand.ID,
		Name:        brand.Name,
		Domain:      brand.Domain,
		Description: brand.Description,
	}, nil
}

func (g *guideStore) ListBrandColors(ctx context.Context, brandID string) ([]export.ColorInfo, error) {
	colors, err := g.store.ListBrandColors(ctx, brandID)
	if err != nil {
		return nil, err
	}
	items := make([]export.ColorInfo, 0, len(colors))
	for _, color := range colors {
		items = append(items, export.ColorInfo{Hex: color.Hex, Kind: color.Kind, Name: color.Name})
	}
	return items, nil
}

func (g *guideStore) ListBrandFonts(ctx context.Context, brandID string) ([]export.FontInfo, error) {
	fonts, err := g.store.ListBrandFonts(ctx, brandID)
	if err != nil {
		return nil, err
	}
	items := make([]export.FontInfo, 0, len(fonts))
	for _, font := range fonts {
		items = append(items, export.FontInfo{Family: font.Family, Usage: font.Usage, Source: font.Source})
	}
	return items, nil
}

func (g *guideStore) ListBrandLogos(ctx context.Context, brandID string) ([]export.LogoInfo, error) {
	logos, err := g.store.ListBrandLogos(ctx, brandID)
	if err != nil {
		return nil, err
	}
	items := make([]export.LogoInfo, 0, len(logos))
	for _, logo := range logos {
		items = append(items, export.LogoInfo{
			ObjectKey: logo.ObjectKey,
			Kind:      logo.Kind,
			Theme:     logo.Theme,
			Format:    logo.Format,
		})
	}
	return items, nil
}
