package app

import (
	"net/http"
	"strings"

	"emblem/api/internal/rbac"
	"emblem/api/internal/store"
)

func (s *HTTPServer) handleTemplates(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListTemplates(r.Context(), session, strings.TrimSpace(r.URL.Query().Get("category")))
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"templates": items})
			return
		case http.MethodPost:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body TemplateInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.CreateTemplate(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, payload)
			return
		}
	}

	if len(parts) == 3 && parts[2] == "frames" && r.Method == http.MethodGet {
		if !s.requireAction(w, session, rbac.ActionWrite) {
			return
		}
		payload, err := s.service.ListDesignFrames(r.Context(), r.URL.Query().Get("fileKey"))
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if len(parts) == 3 && parts[2] == "import" && r.Method == http.MethodPost {
		if !s.requireAction(w, session, rbac.ActionWrite) {
			return
		}
		var body ImportTemplatesInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		items, err := s.service.ImportTemplates(r.Context(), session, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"templates": items})
		return
	}

	if len(parts) == 3 {
		templateID := parts[2]
		switch r.Method {
		case http.MethodGet:
			payload, err := s.service.GetTemplateDetail(r.Context(), session, templateID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case http.MethodPatch:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body TemplateInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.UpdateTemplate(r.Context(), session, templateID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case http.MethodDelete:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			if err := s.service.DeleteTemplate(r.Context(), session, templateID); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleMockups(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			filter := store.MockupFilter{
				ProjectID: strings.TrimSpace(r.URL.Query().Get("projectId")),
				BrandID:   strings.TrimSpace(r.URL.Query().Get("brandId")),
				Status:    strings.TrimSpace(r.URL.Query().Get("status")),
			}
			items, err := s.service.ListMockups(r.Context(), session, filter)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"mockups": items})
			return
		case http.MethodPost:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body MockupInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.CreateMockup(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, payload)
			return
		}
	}

	if len(parts) == 3 {
		mockupID := parts[2]
		switch r.Method {
		case http.MethodGet:
			payload, err := s.service.GetMockupDetail(r.Context(), session, mockupID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case http.MethodPatch:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body UpdateMockupInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.UpdateMockup(r.Context(), session, mockupID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case http.MethodDelete:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			if err := s.service.DeleteMockup(r.Context(), session, mockupID); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
	}

	if len(parts) == 4 {
		mockupID := parts[2]
		switch parts[3] {
		case "submit":
			if r.Method != http.MethodPost {
				break
			}
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			payload, err := s.service.SubmitMockup(r.Context(), session, mockupID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case "review":
			if r.Method != http.MethodPost {
				break
			}
			if !s.requireAction(w, session, rbac.ActionReview) {
				return
			}
			var body ReviewInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.ReviewMockup(r.Context(), session, mockupID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case "reset":
			if r.Method != http.MethodPost {
				break
			}
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			payload, err := s.service.ResetMockup(r.Context(), session, mockupID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case "approvals":
			if r.Method != http.MethodGet {
				break
			}
			payload, err := s.service.MockupApprovals(r.Context(), session, mockupID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}
