package app

import (
	"context"
	"regexp"
	"strings"
	"time"

	"emblem/api/internal/blob"
	"emblem/api/internal/brandlookup"
	"emblem/api/internal/export"
	"emblem/api/internal/search"
	"emblem/api/internal/store"
	"emblem/api/internal/util"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var allowedLogoKinds = map[string]struct{}{
	"icon":     {},
	"wordmark": {},
	"full":     {},
}

var allowedLogoThemes = map[string]struct{}{
	"light": {},
	"dark":  {},
}

var allowedColorKinds = map[string]struct{}{
	"primary":   {},
	"secondary": {},
	"accent":    {},
}

var allowedFontUsages = map[string]struct{}{
	"heading": {},
	"body":    {},
}

func (s *Service) ListBrands(ctx context.Context, session Session) ([]map[string]any, error) {
	brands, err := s.store.ListBrands(ctx, session.OrgID, clientScope(session))
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(brands))
	for _, brand := range brands {
		items = append(items, brandPayload(brand))
	}
	return items, nil
}

func brandPayload(brand store.Brand) map[string]any {
	item := map[string]any{
		"id":          brand.ID,
		"name":        brand.Name,
		"domain":      brand.Domain,
		"description": brand.Description,
		"createdAt":   brand.CreatedAt,
	}
	if brand.ClientID != nil {
		item["clientId"] = *brand.ClientID
	}
	return item
}

// brandForSession loads a brand and enforces the client-role boundary:
// client users only ever see brands attached to their own client.
func (s *Service) brandForSession(ctx context.Context, session Session, brandID string) (store.Brand, error) {
	brand, err := s.store.GetBrand(ctx, session.OrgID, brandID)
	if err != nil {
		return store.Brand{}, err
	}
	if scope := clientScope(session); scope != nil {
		if brand.ClientID == nil || *brand.ClientID != *scope {
			return store.Brand{}, forbiddenError()
		}
	}
	return brand, nil
}

func (s *Service) GetBrandDetail(ctx context.Context, session Session, brandID string) (map[string]any, error) {
	brand, err := s.brandForSession(ctx, session, brandID)
	if err != nil {
		return nil, err
	}

	logos, err := s.store.ListBrandLogos(ctx, brandID)
	if err != nil {
		return nil, err
	}
	colors, err := s.store.ListBrandColors(ctx, brandID)
	if err != nil {
		return nil, err
	}
	fonts, err := s.store.ListBrandFonts(ctx, brandID)
	if err != nil {
		return nil, err
	}

	payload := brandPayload(brand)
	payload["logos"] = s.logoPayloads(ctx, logos)
	payload["colors"] = colorPayloads(colors)
	payload["fonts"] = fontPayloads(fonts)
	return payload, nil
}

func (s *Service) logoPayloads(ctx context.Context, logos []store.BrandLogo) []map[string]any {
	items := make([]map[string]any, 0, len(logos))
	for _, logo := range logos {
		item := map[string]any{
			"id":     logo.ID,
			"kind":   logo.Kind,
			"theme":  logo.Theme,
			"format": logo.Format,
		}
		if url := s.presignGet(ctx, logo.ObjectKey); url != "" {
			item["url"] = url
		}
		items = append(items, item)
	}
	return items
}

func colorPayloads(colors []store.BrandColor) []map[string]any {
	items := make([]map[string]any, 0, len(colors))
	for _, color := range colors {
		items = append(items, map[string]any{
			"id":   color.ID,
			"hex":  color.Hex,
			"kind": color.Kind,
			"name": color.Name,
		})
	}
	return items
}

func fontPayloads(fonts []store.BrandFont) []map[string]any {
	items := make([]map[string]any, 0, len(fonts))
	for _, font := range fonts {
		items = append(items, map[string]any{
			"id":     font.ID,
			"family": font.Family,
			"usage":  font.Usage,
			"source": font.Source,
		})
	}
	return items
}

type BrandInput struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	ClientID    string `json:"clientId"`
}

func (s *Service) CreateBrand(ctx context.Context, session Session, input BrandInput) (map[string]any, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	var clientID *string
	if strings.TrimSpace(input.ClientID) != "" {
		if _, err := s.store.GetClient(ctx, session.OrgID, input.ClientID); err != nil {
			return nil, err
		}
		value := input.ClientID
		clientID = &value
	}

	brand := store.Brand{
		ID:          util.NewID("brd"),
		OrgID:       session.OrgID,
		ClientID:    clientID,
		Name:        name,
		Domain:      strings.TrimSpace(input.Domain),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.store.InsertBrand(ctx, brand); err != nil {
		return nil, err
	}

	s.indexBrand(brand)
	return brandPayload(brand), nil
}

func (s *Service) UpdateBrand(ctx context.Context, session Session, brandID string, input BrandInput) (map[string]any, error) {
	brand, err := s.store.GetBrand(ctx, session.OrgID, brandID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		brand.Name = name
	}
	if input.Domain != "" {
		brand.Domain = strings.TrimSpace(input.Domain)
	}
	if input.Description != "" {
		brand.Description = strings.TrimSpace(input.Description)
	}
	if strings.TrimSpace(input.ClientID) != "" {
		if _, err := s.store.GetClient(ctx, session.OrgID, input.ClientID); err != nil {
			return nil, err
		}
		value := input.ClientID
		brand.ClientID = &value
	}
	if err := s.store.UpdateBrand(ctx, brand); err != nil {
		return nil, err
	}

	s.indexBrand(brand)
	return brandPayload(brand), nil
}

func (s *Service) DeleteBrand(ctx context.Context, session Session, brandID string) error {
	if _, err := s.store.GetBrand(ctx, session.OrgID, brandID); err != nil {
		return err
	}
	count, err := s.store.BrandMockupCount(ctx, brandID)
	if err != nil {
		return err
	}
	if count > 0 {
		return conflictError("BRAND_IN_USE", "Brand still has mockups attached")
	}

	logos, err := s.store.ListBrandLogos(ctx, brandID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBrand(ctx, session.OrgID, brandID); err != nil {
		return err
	}

	// Stored files and search entries are cleaned up best effort.
	if s.blob != nil {
		for _, logo := range logos {
			if logo.ObjectKey != "" {
				_ = s.blob.Remove(ctx, logo.ObjectKey)
			}
		}
	}
	if s.search != nil {
		s.search.DeleteBrand(brandID)
	}
	return nil
}

func (s *Service) indexBrand(brand store.Brand) {
	if s.search == nil {
		return
	}
	record := search.BrandRecord{
		ID:          brand.ID,
		OrgID:       brand.OrgID,
		Name:        brand.Name,
		Domain:      brand.Domain,
		Description: brand.Description,
	}
	if brand.ClientID != nil {
		record.ClientID = *brand.ClientID
	}
	s.search.IndexBrand(record)
}

func (s *Service) LookupBrand(ctx context.Context, domain string) (map[string]any, error) {
	domain = strings.TrimSpace(strings.ToLower(domain))
	if domain == "" {
		return nil, validationError("domain is required")
	}
	if s.lookup == nil || !s.lookup.Configured() {
		return nil, domainError(503, "LOOKUP_UNAVAILABLE", "Brand lookup is not configured", nil)
	}

	profile, err := s.lookup.Lookup(ctx, domain)
	if err != nil {
		if err == brandlookup.ErrNotFound {
			return nil, domainError(404, "BRAND_NOT_FOUND", "No brand data found for domain", nil)
		}
		return nil, err
	}

	logos := make([]map[string]any, 0, len(profile.Logos))
	for _, logo := range profile.Logos {
		logos = append(logos, map[string]any{
			"kind":   logo.Kind,
			"theme":  logo.Theme,
			"format": logo.Format,
			"url":    logo.URL,
		})
	}
	colors := make([]map[string]any, 0, len(profile.Colors))
	for _, color := range profile.Colors {
		colors = append(colors, map[string]any{"hex": color.Hex, "kind": color.Kind})
	}
	fonts := make([]map[string]any, 0, len(profile.Fonts))
	for _, font := range profile.Fonts {
		fonts = append(fonts, map[string]any{
			"family": font.Family,
			"usage":  font.Usage,
			"source": font.Source,
		})
	}

	return map[string]any{
		"name":        profile.Name,
		"domain":      profile.Domain,
		"description": profile.Description,
		"logos":       logos,
		"colors":      colors,
		"fonts":       fonts,
	}, nil
}

type ImportBrandInput struct {
	Domain   string `json:"domain"`
	ClientID string `json:"clientId"`
}

// ImportBrand looks up a domain and persists the brand with every asset
// the provider returned. Logo files are copied into the blob store so
// later reads never depend on the provider.
func (s *Service) ImportBrand(ctx context.Context, session Session, input ImportBrandInput) (map[string]any, error) {
	domain := strings.TrimSpace(strings.ToLower(input.Domain))
	if domain == "" {
		return nil, validationError("domain is required")
	}
	if s.lookup == nil || !s.lookup.Configured() {
		return nil, domainError(503, "LOOKUP_UNAVAILABLE", "Brand lookup is not configured", nil)
	}

	profile, err := s.lookup.Lookup(ctx, domain)
	if err != nil {
		if err == brandlookup.ErrNotFound {
			return nil, domainError(404, "BRAND_NOT_FOUND", "No brand data found for domain", nil)
		}
		return nil, err
	}

	var clientID *string
	if strings.TrimSpace(input.ClientID) != "" {
		if _, err := s.store.GetClient(ctx, session.OrgID, input.ClientID); err != nil {
			return nil, err
		}
		value := input.ClientID
		clientID = &value
	}

	brand := store.Brand{
		ID:          util.NewID("brd"),
		OrgID:       session.OrgID,
		ClientID:    clientID,
		Name:        firstNonBlank(profile.Name, domain),
		Domain:      domain,
		Description: profile.Description,
	}
	if err := s.store.InsertBrand(ctx, brand); err != nil {
		return nil, err
	}

	for _, logo := range profile.Logos {
		s.importLogo(ctx, session.OrgID, brand.ID, logo)
	}
	for _, color := range profile.Colors {
		if !hexColorPattern.MatchString(color.Hex) {
			continue
		}
		_ = s.store.InsertBrandColor(ctx, store.BrandColor{
			ID:      util.NewID("col"),
			BrandID: brand.ID,
			Hex:     strings.ToUpper(color.Hex),
			Kind:    normalizeKind(color.Kind, allowedColorKinds, "accent"),
		})
	}
	for _, font := range profile.Fonts {
		if strings.TrimSpace(font.Family) == "" {
			continue
		}
		_ = s.store.InsertBrandFont(ctx, store.BrandFont{
			ID:      util.NewID("fnt"),
			BrandID: brand.ID,
			Family:  font.Family,
			Usage:   normalizeKind(font.Usage, allowedFontUsages, "body"),
			Source:  firstNonBlank(font.Source, "custom"),
		})
	}

	s.indexBrand(brand)
	return s.GetBrandDetail(ctx, session, brand.ID)
}

// importLogo copies one provider logo into the blob store. A failed
// fetch skips the variant rather than failing the whole import.
func (s *Service) importLogo(ctx context.Context, orgID, brandID string, logo brandlookup.Logo) {
	kind := normalizeKind(logo.Kind, allowedLogoKinds, "icon")
	theme := normalizeKind(logo.Theme, allowedLogoThemes, "light")
	format := firstNonBlank(logo.Format, "png")
	logoID := util.NewID("logo")

	objectKey := ""
	if s.blob != nil {
		body, contentType, err := s.lookup.FetchAsset(ctx, logo.URL)
		if err == nil {
			defer body.Close()
			key := blob.LogoKey(orgID, brandID, logoID, format)
			if err := s.blob.Put(ctx, key, body, -1, contentType); err == nil {
				objectKey = key
			}
		}
	}

	_ = s.store.InsertBrandLogo(ctx, store.BrandLogo{
		ID:        logoID,
		BrandID:   brandID,
		Kind:      kind,
		Theme:     theme,
		Format:    format,
		ObjectKey: objectKey,
		SourceURL: logo.URL,
	})
}

type LogoInput struct {
	Kind   string `json:"kind"`
	Theme  string `json:"theme"`
	Format string `json:"format"`
}

// AddBrandLogo registers a logo variant and returns a presigned PUT URL
// for the file itself.
func (s *Service) AddBrandLogo(ctx context.Context, session Session, brandID string, input LogoInput) (map[string]any, error) {
	if _, err := s.store.GetBrand(ctx, session.OrgID, brandID); err != nil {
		return nil, err
	}
	if _, ok := allowedLogoKinds[input.Kind]; !ok {
		return nil, validationError("kind must be one of icon, wordmark, full")
	}
	if _, ok := allowedLogoThemes[input.Theme]; !ok {
		return nil, validationError("theme must be light or dark")
	}
	format := firstNonBlank(input.Format, "png")
	if s.blob == nil {
		return nil, domainError(503, "STORAGE_UNAVAILABLE", "Object storage is not configured", nil)
	}

	logoID := util.NewID("logo")
	key := blob.LogoKey(session.OrgID, brandID, logoID, format)
	uploadURL, err := s.blob.PresignPut(ctx, key, 15*time.Minute)
	if err != nil {
		return nil, err
	}

	if err := s.store.InsertBrandLogo(ctx, store.BrandLogo{
		ID:        logoID,
		BrandID:   brandID,
		Kind:      input.Kind,
		Theme:     input.Theme,
		Format:    format,
		ObjectKey: key,
	}); err != nil {
		return nil, err
	}

	return map[string]any{
		"id":        logoID,
		"kind":      input.Kind,
		"theme":     input.Theme,
		"format":    format,
		"uploadUrl": uploadURL,
	}, nil
}

func (s *Service) ListBrandLogos(ctx context.Context, session Session, brandID string) ([]map[string]any, error) {
	if _, err := s.brandForSession(ctx, session, brandID); err != nil {
		return nil, err
	}
	logos, err := s.store.ListBrandLogos(ctx, brandID)
	if err != nil {
		return nil, err
	}
	return s.logoPayloads(ctx, logos), nil
}

func (s *Service) DeleteBrandLogo(ctx context.Context, session Session, brandID, logoID string) error {
	if _, err := s.store.GetBrand(ctx, session.OrgID, brandID); err != nil {
		return err
	}
	logo, err := s.store.GetBrandLogo(ctx, brandID, logoID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBrandLogo(ctx, brandID, logoID); err != nil {
		return err
	}
	if s.blob != nil && logo.ObjectKey != "" {
		_ = s.blob.Remove(ctx, logo.ObjectKey)
	}
	return nil
}

type ColorInput struct {
	Hex  string `json:"hex"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (s *Service) AddBrandColor(ctx context.Context, session Session, brandID string, input ColorInput) (map[string]any, error) {
	if _, err := s.store.GetBrand(ctx, session.OrgID, brandID); err != nil {
		return nil, err
	}
	if !hexColorPattern.MatchString(input.Hex) {
		return nil, validationError("hex must look like #RRGGBB")
	}
	if _, ok := allowedColorKinds[input.Kind]; !ok {
		return nil, validationError("kind must be one of primary, secondary, accent")
	}

	color := store.BrandColor{
		ID:      util.NewID("col"),
		BrandID: brandID,
		Hex:     strings.ToUpper(input.Hex),
		Kind:    input.Kind,
		Name:    strings.TrimSpace(input.Name),
	}
	if err := s.store.InsertBrandColor(ctx, color); err != nil {
		return nil, err
	}
	return map[string]any{"id": color.ID, "hex": color.Hex, "kind": color.Kind, "name": color.Name}, nil
}

func (s *Service) ListBrandColorsForSession(ctx context.Context, session Session, brandID string) ([]map[string]any, error) {
	if _, err := s.brandForSession(ctx, session, brandID); err != nil {
		return nil, err
	}
	colors, err := s.store.ListBrandColors(ctx, brandID)
	if err != nil {
		return nil, err
	}
	return colorPayloads(colors), nil
}

func (s *Service) DeleteBrandColor(ctx context.Context, session Session, brandID, colorID string) error {
	if _, err := s.store.GetBrand(ctx, session.OrgID, brandID); err != nil {
		return err
	}
	return s.store.DeleteBrandColor(ctx, brandID, colorID)
}

type FontInput struct {
	Family string `json:"family"`
	Usage  string `json:"usage"`
	Source string `json:"source"`
}

func (s *Service) AddBrandFont(ctx context.Context, session Session, brandID string, input FontInput) (map[string]any, error) {
	if _, err := s.store.GetBrand(ctx, session.OrgID, brandID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Family) == "" {
		return nil, validationError("family is required")
	}
	if _, ok := allowedFontUsages[input.Usage]; !ok {
		return nil, validationError("usage must be heading or body")
	}

	font := store.BrandFont{
		ID:      util.NewID("fnt"),
		BrandID: brandID,
		Family:  strings.TrimSpace(input.Family),
		Usage:   input.Usage,
		Source:  firstNonBlank(strings.TrimSpace(input.Source), "custom"),
	}
	if err := s.store.InsertBrandFont(ctx, font); err != nil {
		return nil, err
	}
	return map[string]any{"id": font.ID, "family": font.Family, "usage": font.Usage, "source": font.Source}, nil
}

func (s *Service) ListBrandFontsForSession(ctx context.Context, session Session, brandID string) ([]map[string]any, error) {
	if _, err := s.brandForSession(ctx, session, brandID); err != nil {
		return nil, err
	}
	fonts, err := s.store.ListBrandFonts(ctx, brandID)
	if err != nil {
		return nil, err
	}
	return fontPayloads(fonts), nil
}

func (s *Service) DeleteBrandFont(ctx context.Context, session Session, brandID, fontID string) error {
	if _, err := s.store.GetBrand(ctx, session.OrgID, brandID); err != nil {
		return err
	}
	return s.store.DeleteBrandFont(ctx, brandID, fontID)
}

func (s *Service) ExportBrandGuide(ctx context.Context, session Session, brandID string, format export.Format) (*export.Result, error) {
	if _, err := s.brandForSession(ctx, session, brandID); err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, domainError(503, "EXPORT_UNAVAILABLE", "Export is not configured", nil)
	}
	return s.exporter.Export(ctx, export.Request{
		OrgID:   session.OrgID,
		BrandID: brandID,
		Format:  format,
	})
}

func normalizeKind(value string, allowed map[string]struct{}, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if _, ok := allowed[value]; ok {
		return value
	}
	return fallback
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
