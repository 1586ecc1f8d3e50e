package app

import (
	"context"
	"strings"
	"time"

	"emblem/api/internal/blob"
	"emblem/api/internal/search"
	"emblem/api/internal/store"
	"emblem/api/internal/util"
)

var allowedTemplateCategories = map[string]struct{}{
	"physical": {},
	"digital":  {},
}

func (s *Service) ListTemplates(ctx context.Context, session Session, category string) ([]map[string]any, error) {
	if category != "" {
		if _, ok := allowedTemplateCategories[category]; !ok {
			return nil, validationError("category must be physical or digital")
		}
	}
	templates, err := s.store.ListTemplates(ctx, session.OrgID, category)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(templates))
	for _, template := range templates {
		items = append(items, s.templatePayload(ctx, template))
	}
	return items, nil
}

func (s *Service) templatePayload(ctx context.Context, template store.Template) map[string]any {
	item := map[string]any{
		"id":          template.ID,
		"name":        template.Name,
		"category":    template.Category,
		"description": template.Description,
		"width":       template.Width,
		"height":      template.Height,
		"logoX":       template.LogoX,
		"logoY":       template.LogoY,
		"logoScale":   template.LogoScale,
		"createdAt":   template.CreatedAt,
	}
	if url := s.presignGet(ctx, template.ObjectKey); url != "" {
		item["backgroundUrl"] = url
	}
	return item
}

func (s *Service) GetTemplateDetail(ctx context.Context, session Session, templateID string) (map[string]any, error) {
	template, err := s.store.GetTemplate(ctx, session.OrgID, templateID)
	if err != nil {
		return nil, err
	}
	return s.templatePayload(ctx, template), nil
}

type TemplateInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Format      string  `json:"format"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	LogoX       float64 `json:"logoX"`
	LogoY       float64 `json:"logoY"`
	LogoScale   float64 `json:"logoScale"`
}

// CreateTemplate stores the template row and hands back a presigned PUT
// URL for the background image.
func (s *Service) CreateTemplate(ctx context.Context, session Session, input TemplateInput) (map[string]any, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if _, ok := allowedTemplateCategories[input.Category]; !ok {
		return nil, validationError("category must be physical or digital")
	}
	if input.Width <= 0 || input.Height <= 0 {
		return nil, validationError("width and height must be positive")
	}
	if s.blob == nil {
		return nil, domainError(503, "STORAGE_UNAVAILABLE", "Object storage is not configured", nil)
	}

	scale := input.LogoScale
	if scale <= 0 {
		scale = 1
	}
	template := store.Template{
		ID:          util.NewID("tpl"),
		OrgID:       session.OrgID,
		Name:        name,
		Category:    input.Category,
		Description: strings.TrimSpace(input.Description),
		Width:       input.Width,
		Height:      input.Height,
		LogoX:       input.LogoX,
		LogoY:       input.LogoY,
		LogoScale:   scale,
	}
	format := firstNonBlank(strings.ToLower(input.Format), "png")
	template.ObjectKey = blob.TemplateKey(session.OrgID, template.ID, format)

	uploadURL, err := s.blob.PresignPut(ctx, template.ObjectKey, 15*time.Minute)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertTemplate(ctx, template); err != nil {
		return nil, err
	}

	s.indexTemplate(template)
	payload := s.templatePayload(ctx, template)
	payload["uploadUrl"] = uploadURL
	return payload, nil
}

func (s *Service) UpdateTemplate(ctx context.Context, session Session, templateID string, input TemplateInput) (map[string]any, error) {
	template, err := s.store.GetTemplate(ctx, session.OrgID, templateID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		template.Name = name
	}
	if input.Category != "" {
		if _, ok := allowedTemplateCategories[input.Category]; !ok {
			return nil, validationError("category must be physical or digital")
		}
		template.Category = input.Category
	}
	if input.Description != "" {
		template.Description = strings.TrimSpace(input.Description)
	}
	if input.Width > 0 {
		template.Width = input.Width
	}
	if input.Height > 0 {
		template.Height = input.Height
	}
	if input.LogoX != 0 {
		template.LogoX = input.LogoX
	}
	if input.LogoY != 0 {
		template.LogoY = input.LogoY
	}
	if input.LogoScale > 0 {
		template.LogoScale = input.LogoScale
	}
	if err := s.store.UpdateTemplate(ctx, template); err != nil {
		return nil, err
	}

	s.indexTemplate(template)
	return s.templatePayload(ctx, template), nil
}

func (s *Service) DeleteTemplate(ctx context.Context, session Session, templateID string) error {
	template, err := s.store.GetTemplate(ctx, session.OrgID, templateID)
	if err != nil {
		return err
	}
	count, err := s.store.TemplateMockupCount(ctx, templateID)
	if err != nil {
		return err
	}
	if count > 0 {
		return conflictError("TEMPLATE_IN_USE", "Template still has mockups attached")
	}
	if err := s.store.DeleteTemplate(ctx, session.OrgID, templateID); err != nil {
		return err
	}
	if s.blob != nil && template.ObjectKey != "" {
		_ = s.blob.Remove(ctx, template.ObjectKey)
	}
	if s.search != nil {
		s.search.DeleteTemplate(templateID)
	}
	return nil
}

func (s *Service) indexTemplate(template store.Template) {
	if s.search == nil {
		return
	}
	s.search.IndexTemplate(search.TemplateRecord{
		ID:          template.ID,
		OrgID:       template.OrgID,
		Name:        template.Name,
		Category:    template.Category,
		Description: template.Description,
	})
}

func (s *Service) ListDesignFrames(ctx context.Context, fileKey string) (map[string]any, error) {
	if strings.TrimSpace(fileKey) == "" {
		return nil, validationError("fileKey is required")
	}
	if s.design == nil || !s.design.Configured() {
		return nil, domainError(503, "DESIGN_UNAVAILABLE", "Design import is not configured", nil)
	}
	frames, err := s.design.ListFrames(ctx, fileKey)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(frames))
	for _, frame := range frames {
		items = append(items, map[string]any{
			"nodeId": frame.NodeID,
			"name":   frame.Name,
			"width":  frame.Width,
			"height": frame.Height,
		})
	}
	return map[string]any{"frames": items}, nil
}

type ImportTemplatesInput struct {
	FileKey  string   `json:"fileKey"`
	NodeIDs  []string `json:"nodeIds"`
	Category string   `json:"category"`
}

// ImportTemplates pulls frame renders from the design tool and creates
// one template per frame, backgrounds stored in the blob store.
func (s *Service) ImportTemplates(ctx context.Context, session Session, input ImportTemplatesInput) ([]map[string]any, error) {
	if strings.TrimSpace(input.FileKey) == "" {
		return nil, validationError("fileKey is required")
	}
	if len(input.NodeIDs) == 0 {
		return nil, validationError("nodeIds is required")
	}
	if _, ok := allowedTemplateCategories[input.Category]; !ok {
		return nil, validationError("category must be physical or digital")
	}
	if s.design == nil || !s.design.Configured() {
		return nil, domainError(503, "DESIGN_UNAVAILABLE", "Design import is not configured", nil)
	}
	if s.blob == nil {
		return nil, domainError(503, "STORAGE_UNAVAILABLE", "Object storage is not configured", nil)
	}

	frames, err := s.design.ListFrames(ctx, input.FileKey)
	if err != nil {
		return nil, err
	}
	frameByNode := make(map[string]int)
	for i, frame := range frames {
		frameByNode[frame.NodeID] = i
	}
	renders, err := s.design.RenderFrames(ctx, input.FileKey, input.NodeIDs)
	if err != nil {
		return nil, err
	}

	created := make([]map[string]any, 0, len(input.NodeIDs))
	for _, nodeID := range input.NodeIDs {
		imageURL, ok := renders[nodeID]
		if !ok || imageURL == "" {
			continue
		}
		idx, ok := frameByNode[nodeID]
		if !ok {
			continue
		}
		frame := frames[idx]

		body, err := s.design.FetchImage(ctx, imageURL)
		if err != nil {
			continue
		}

		template := store.Template{
			ID:        util.NewID("tpl"),
			OrgID:     session.OrgID,
			Name:      firstNonBlank(frame.Name, nodeID),
			Category:  input.Category,
			Width:     int(frame.Width),
			Height:    int(frame.Height),
			LogoScale: 1,
		}
		template.ObjectKey = blob.TemplateKey(session.OrgID, template.ID, "png")

		err = s.blob.Put(ctx, template.ObjectKey, body, -1, "image/png")
		body.Close()
		if err != nil {
			continue
		}
		if err := s.store.InsertTemplate(ctx, template); err != nil {
			continue
		}

		s.indexTemplate(template)
		created = append(created, s.templatePayload(ctx, template))
	}

	if len(created) == 0 {
		return nil, domainError(502, "IMPORT_FAILED", "No frames could be imported", nil)
	}
	return created, nil
}

func (s *Service) ListMockups(ctx context.Context, session Session, filter store.MockupFilter) ([]map[string]any, error) {
	if scope := clientScope(session); scope != nil {
		filter.ClientID = *scope
	}
	mockups, err := s.store.ListMockups(ctx, session.OrgID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(mockups))
	for _, mockup := range mockups {
		items = append(items, s.mockupPayload(ctx, mockup))
	}
	return items, nil
}

func (s *Service) mockupPayload(ctx context.Context, mockup store.Mockup) map[string]any {
	item := map[string]any{
		"id":            mockup.ID,
		"name":          mockup.Name,
		"brandId":       mockup.BrandID,
		"templateId":    mockup.TemplateID,
		"logoId":        mockup.LogoID,
		"status":        mockup.Status,
		"stagePosition": mockup.StagePosition,
		"round":         mockup.Round,
		"createdBy":     mockup.CreatedBy,
		"createdAt":     mockup.CreatedAt,
	}
	if mockup.ProjectID != nil {
		item["projectId"] = *mockup.ProjectID
	}
	if url := s.presignGet(ctx, mockup.ObjectKey); url != "" {
		item["imageUrl"] = url
	}
	return item
}

// mockupForSession loads a mockup and applies the client-role boundary
// through the owning brand.
func (s *Service) mockupForSession(ctx context.Context, session Session, mockupID string) (store.Mockup, error) {
	mockup, err := s.store.GetMockup(ctx, session.OrgID, mockupID)
	if err != nil {
		return store.Mockup{}, err
	}
	if scope := clientScope(session); scope != nil {
		brand, err := s.store.GetBrand(ctx, session.OrgID, mockup.BrandID)
		if err != nil {
			return store.Mockup{}, err
		}
		if brand.ClientID == nil || *brand.ClientID != *scope {
			return store.Mockup{}, forbiddenError()
		}
	}
	return mockup, nil
}

func (s *Service) GetMockupDetail(ctx context.Context, session Session, mockupID string) (map[string]any, error) {
	mockup, err := s.mockupForSession(ctx, session, mockupID)
	if err != nil {
		return nil, err
	}
	payload := s.mockupPayload(ctx, mockup)
	if mockup.Status != "draft" {
		board, err := s.approvalBoard(ctx, mockup)
		if err != nil {
			return nil, err
		}
		payload["approvals"] = board
	}
	return payload, nil
}

type MockupInput struct {
	Name       string `json:"name"`
	BrandID    string `json:"brandId"`
	TemplateID string `json:"templateId"`
	LogoID     string `json:"logoId"`
	ProjectID  string `json:"projectId"`
}

// CreateMockup records the composition metadata and returns a presigned
// PUT URL for the rendered image, which the editor uploads directly.
func (s *Service) CreateMockup(ctx context.Context, session Session, input MockupInput) (map[string]any, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if input.BrandID == "" || input.TemplateID == "" || input.LogoID == "" {
		return nil, validationError("brandId, templateId and logoId are required")
	}
	if s.blob == nil {
		return nil, domainError(503, "STORAGE_UNAVAILABLE", "Object storage is not configured", nil)
	}

	if _, err := s.store.GetBrand(ctx, session.OrgID, input.BrandID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetTemplate(ctx, session.OrgID, input.TemplateID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetBrandLogo(ctx, input.BrandID, input.LogoID); err != nil {
		return nil, err
	}

	var projectID *string
	if strings.TrimSpace(input.ProjectID) != "" {
		if _, err := s.store.GetProject(ctx, session.OrgID, input.ProjectID); err != nil {
			return nil, err
		}
		value := input.ProjectID
		projectID = &value
	}

	mockup := store.Mockup{
		ID:         util.NewID("mck"),
		OrgID:      session.OrgID,
		BrandID:    input.BrandID,
		TemplateID: input.TemplateID,
		LogoID:     input.LogoID,
		ProjectID:  projectID,
		Name:       name,
		Status:     "draft",
		CreatedBy:  session.UserID,
	}
	mockup.ObjectKey = blob.MockupKey(session.OrgID, mockup.ID)

	uploadURL, err := s.blob.PresignPut(ctx, mockup.ObjectKey, 15*time.Minute)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertMockup(ctx, mockup); err != nil {
		return nil, err
	}

	s.indexMockup(ctx, mockup)
	payload := s.mockupPayload(ctx, mockup)
	payload["uploadUrl"] = uploadURL
	return payload, nil
}

type UpdateMockupInput struct {
	Name      string  `json:"name"`
	ProjectID *string `json:"projectId"`
}

func (s *Service) UpdateMockup(ctx context.Context, session Session, mockupID string, input UpdateMockupInput) (map[string]any, error) {
	mockup, err := s.store.GetMockup(ctx, session.OrgID, mockupID)
	if err != nil {
		return nil, err
	}
	if mockup.Status == "in_review" {
		return nil, conflictError("MOCKUP_IN_REVIEW", "Mockup is in review")
	}

	name := firstNonBlank(strings.TrimSpace(input.Name), mockup.Name)
	projectID := mockup.ProjectID
	if input.ProjectID != nil {
		if *input.ProjectID == "" {
			projectID = nil
		} else {
			if _, err := s.store.GetProject(ctx, session.OrgID, *input.ProjectID); err != nil {
				return nil, err
			}
			projectID = input.ProjectID
		}
	}

	if err := s.store.UpdateMockup(ctx, session.OrgID, mockupID, name, projectID); err != nil {
		return nil, err
	}
	mockup, err = s.store.GetMockup(ctx, session.OrgID, mockupID)
	if err != nil {
		return nil, err
	}
	s.indexMockup(ctx, mockup)
	return s.mockupPayload(ctx, mockup), nil
}

func (s *Service) DeleteMockup(ctx context.Context, session Session, mockupID string) error {
	mockup, err := s.store.GetMockup(ctx, session.OrgID, mockupID)
	if err != nil {
		return err
	}
	if mockup.Status == "in_review" {
		return conflictError("MOCKUP_IN_REVIEW", "Mockup is in review")
	}
	if err := s.store.DeleteMockup(ctx, session.OrgID, mockupID); err != nil {
		return err
	}
	if s.blob != nil && mockup.ObjectKey != "" {
		_ = s.blob.Remove(ctx, mockup.ObjectKey)
	}
	if s.search != nil {
		s.search.DeleteMockup(mockupID)
	}
	return nil
}

func (s *Service) indexMockup(ctx context.Context, mockup store.Mockup) {
	if s.search == nil {
		return
	}
	record := search.MockupRecord{
		ID:      mockup.ID,
		OrgID:   mockup.OrgID,
		Name:    mockup.Name,
		BrandID: mockup.BrandID,
		Status:  mockup.Status,
	}
	if brand, err := s.store.GetBrand(ctx, mockup.OrgID, mockup.BrandID); err == nil && brand.ClientID != nil {
		record.ClientID = *brand.ClientID
	}
	s.search.IndexMockup(record)
}
